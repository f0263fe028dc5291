package credentials

import (
	"regexp"
	"slices"
)

// fallbackRegions are the commercial regions offered when the account's
// enabled regions cannot be listed.
var fallbackRegions = []string{
	"af-south-1",
	"ap-east-1",
	"ap-northeast-1",
	"ap-northeast-2",
	"ap-northeast-3",
	"ap-south-1",
	"ap-south-2",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-southeast-3",
	"ap-southeast-4",
	"ca-central-1",
	"ca-west-1",
	"eu-central-1",
	"eu-central-2",
	"eu-north-1",
	"eu-south-1",
	"eu-south-2",
	"eu-west-1",
	"eu-west-2",
	"eu-west-3",
	"il-central-1",
	"me-central-1",
	"me-south-1",
	"sa-east-1",
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
}

// FallbackRegions returns the static region list, sorted.
func FallbackRegions() []string {
	return slices.Clone(fallbackRegions)
}

// IsKnownRegion reports whether region is in the static list.
func IsKnownRegion(region string) bool {
	_, ok := slices.BinarySearch(fallbackRegions, region)
	return ok
}

var regionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-[0-9]+$`)

// IsValidRegionName reports whether region is shaped like a region code
// such as "eu-west-1" or "us-gov-east-1". Unknown regions of the right
// shape are valid; new regions appear faster than the static list.
func IsValidRegionName(region string) bool {
	return regionPattern.MatchString(region)
}
