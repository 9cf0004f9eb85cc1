package catalog

import "errors"

// ErrConnection indicates the SSH channel to the recording host could not be
// established. Fatal to the whole run.
var ErrConnection = errors.New("remote host unreachable")

// ErrDiscovery indicates the file listing failed or produced no usable
// entries. Fatal to the whole run.
var ErrDiscovery = errors.New("no usable test files")
