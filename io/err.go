package io

import (
	"errors"

	"github.com/ezrec/triad/translate"
)

var f = translate.From

var (
	// Device errors
	ErrRegisterInvalid = errors.New(f("device register invalid"))
)
