// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"github.com/luxfi/version"
)

// Version is the sale core's semantic version, reported by the API.
var Version = &version.Semantic{
	Major: 1,
	Minor: 0,
	Patch: 0,
}
