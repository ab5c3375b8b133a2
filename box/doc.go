// Copyright 2024 The amrx Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package box implements the rectangular index-box algebra (IndexBox),
// ordered collections of boxes with a shared centering (BoxArray), and
// periodic-wrap geometry (Periodicity) that the rest of amrx builds on.
package box
