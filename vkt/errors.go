package vkt

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	//No enumerated GPU passed the suitability predicate
	ErrNoSuitableDevice = errors.New("vkt: no suitable rendering device")
	//A builder was asked to build with a required piece missing
	ErrIncomplete = errors.New("vkt: incomplete build description")
	//No memory type satisfies a resource's requirements
	ErrNoMemoryType = errors.New("vkt: no suitable memory type")
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError converts a non-success Vulkan result into an error carrying the
// caller's stack. Success yields nil.
func NewError(ret vk.Result) error {
	if !isError(ret) {
		return nil
	}
	return errors.WithStack(fmt.Errorf("vulkan error: %s (%d)", vk.Error(ret).Error(), ret))
}

// Result wraps a non-success result with a description of the failed call.
func Result(ret vk.Result, what string) error {
	if !isError(ret) {
		return nil
	}
	return errors.Wrap(NewError(ret), what)
}

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}

// checkErr turns a panic raised by orPanic (or by the driver bindings) into an
// error at the exported function boundary.
func checkErr(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(error); ok {
			*err = e
			return
		}
		*err = errors.Errorf("%+v", v)
	}
}

// Guard runs fn and converts any panic escaping it into an error.
func Guard(fn func() error) (err error) {
	defer checkErr(&err)
	return fn()
}
