// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"regexp"

	"github.com/samber/lo"
)

// group 1 is the opening quote of the reference string
var referenceRE = regexp.MustCompile(`\b(?:require\s*\(\s*|import\s+(?:[^'";]+?\s+from\s+)?|export\s+[^'";]+?\s+from\s+)(['"])([^'"\n]+)['"]`)

// extractDependencies returns the distinct reference strings of code, in order
// of first occurrence, and the byte offset of every occurrence's opening quote
func extractDependencies(code string) (deps []string, offsets []int) {
	matches := referenceRE.FindAllStringSubmatchIndex(code, -1)
	offsets = make([]int, 0, len(matches))
	for _, m := range matches {
		quote, closing := code[m[2]], code[m[5]]
		if quote != closing {
			continue
		}
		deps = append(deps, code[m[4]:m[5]])
		offsets = append(offsets, m[2])
	}
	return lo.Uniq(deps), offsets
}
