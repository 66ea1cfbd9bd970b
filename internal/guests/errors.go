package guests

import "errors"

// ErrStore indicates the usage store could not be read or written.
var ErrStore = errors.New("guest usage store unavailable")
