// Copyright 2024 The amrx Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package ivec implements the fixed-dimension integer vector arithmetic that
// underlies every index-space computation in amrx: box bounds, ghost-cell
// growth, refinement ratios, and periodic shifts are all IntVects.
package ivec
