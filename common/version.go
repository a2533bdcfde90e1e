package common

import (
	"fmt"
)

// Must be manually updated!
// Before releasing: Verify the version number and set Prerelease to ""
// After releasing: Increase the Patch number and set Prerelease to "-pre"
var version = Version{
	Major:      0,
	Minor:      1,
	Patch:      0,
	Prerelease: "-pre",
}

// Set via -ldflags. Example:
//
//	go install -ldflags "-X github.com/drand/pre/common.BUILDDATE=`date -u +%d/%m/%Y@%H:%M:%S` -X github.com/drand/pre/common.COMMIT=`git rev-parse HEAD`"
var (
	COMMIT    = "none"
	BUILDDATE = "unknown"
)

func GetAppVersion() Version {
	return version
}

type Version struct {
	Major      uint32
	Minor      uint32
	Patch      uint32
	Prerelease string
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Prerelease)
}
