package cli

import "errors"

var (
	errUsage        = errors.New("wrong number of arguments")
	errUnknownCmd   = errors.New("unknown command")
	errInterrupted  = errors.New("interrupted")
	errArrayOp      = errors.New("unknown array operation")
	errEmptyKeyList = errors.New("key list is empty")
)
