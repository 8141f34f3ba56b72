// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolvererrors

import (
	"errors"
)

const (
	NotReady          = "NOT_READY"
	LoadFailed        = "LOAD_FAILED"
	InvalidOptions    = "INVALID_OPTIONS"
	UnresolvedModule  = "UNRESOLVED_MODULE"
	UnqualifiableName = "UNQUALIFIABLE_NAME"
	DuplicateName     = "DUPLICATE_NAME"
	ModuleSyntax      = "MODULE_SYNTAX"
	UnknownError      = "UNKNOWN_ERROR"
)

// ResolutionError is a resolver failure with a stable code, suitable for machine readable output
type ResolutionError struct {
	Code  string
	Cause error
}

func (r *ResolutionError) Error() string {
	if r.Cause != nil {
		return r.Code + ": " + r.Cause.Error()
	}
	return r.Code
}

func (r *ResolutionError) MarshalYAML() (interface{}, error) {
	var causeStr string
	if r.Cause != nil {
		causeStr = r.Cause.Error()
	}
	return map[string]interface{}{
		"code":  r.Code,
		"cause": causeStr,
	}, nil
}

func (r *ResolutionError) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var aux struct {
		Code  string `yaml:"code"`
		Cause string `yaml:"cause"`
	}
	if err := unmarshal(&aux); err != nil {
		return err
	}
	r.Code = aux.Code
	if aux.Cause != "" {
		r.Cause = errors.New(aux.Cause)
	}
	return nil
}

func (r *ResolutionError) Unwrap() error {
	return r.Cause
}

var _ error = (*ResolutionError)(nil)

func New(code string, cause error) *ResolutionError {
	return &ResolutionError{Code: code, Cause: cause}
}

// Classifier maps a sentinel error to the code reported for it
type Classifier struct {
	Sentinel error
	Code     string
}

// Standardize wraps err into a ResolutionError, using the code of the first
// classifier whose sentinel err matches
func Standardize(err error, classifiers ...Classifier) *ResolutionError {
	if err == nil {
		return nil
	}

	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr
	}

	for _, c := range classifiers {
		if errors.Is(err, c.Sentinel) {
			return New(c.Code, err)
		}
	}
	return New(UnknownError, err)
}
