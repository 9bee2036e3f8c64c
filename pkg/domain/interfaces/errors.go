package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrRemoteNotFound means the remote API explicitly reported the object as
// gone (user_not_found, channel_not_found). It is the only remote error the
// cache layer reacts to: the caller soft-deletes the cached row. Mere
// absence from a listing response never maps to this error.
var ErrRemoteNotFound = goerr.New("object not found on remote")
