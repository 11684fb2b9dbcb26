package simplefs

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

// appendWarning records a duplicate-block corruption signal found during
// scanInodeTable. Every signal found during one mount is aggregated into a
// single *multierror.Error rather than returned one at a time, so Mount can
// log the whole batch once the scan finishes instead of interleaving
// warnings with the scan itself.
func appendWarning(warnings error, dataBlock, firstOwner, secondOwner uint32) error {
	return multierror.Append(warnings, fmt.Errorf(
		"data block %d is reachable from both inode %d and inode %d; "+
			"leaving it marked in-use",
		dataBlock, firstOwner, secondOwner,
	))
}
