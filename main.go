// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gohopsan is a time-domain simulator for lumped physical systems built on
// the transmission-line-method decoupling technique
package main

import "github.com/hopsan/gohopsan/cmd"

func main() {
	cmd.Execute()
}
