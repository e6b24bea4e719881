package vkt

import (
	"context"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//The report callback is a package level function, loggers are looked up per instance
var (
	reportersMu sync.RWMutex
	reporters   = map[vk.Instance]*slog.Logger{}
)

type debugReporter struct {
	instance vk.Instance
	callback vk.DebugReportCallback
}

func newDebugReporter(instance vk.Instance, logger *slog.Logger) (*debugReporter, error) {
	reportersMu.Lock()
	reporters[instance] = logger.With("component", "validation")
	reportersMu.Unlock()

	r := &debugReporter{instance: instance}
	ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: debugReportFunc(instance),
	}, nil, &r.callback)
	if isError(ret) {
		reportersMu.Lock()
		delete(reporters, instance)
		reportersMu.Unlock()
		return nil, errors.Wrap(NewError(ret), "create debug report callback")
	}
	return r, nil
}

func (r *debugReporter) destroy() {
	if r.callback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(r.instance, r.callback, nil)
		r.callback = vk.NullDebugReportCallback
	}
	reportersMu.Lock()
	delete(reporters, r.instance)
	reportersMu.Unlock()
}

func debugReportFunc(instance vk.Instance) vk.DebugReportCallbackFunc {
	return func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
		object uint64, location uint, messageCode int32, pLayerPrefix string,
		pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

		reportersMu.RLock()
		logger := reporters[instance]
		reportersMu.RUnlock()
		if logger == nil {
			logger = slog.Default()
		}
		logger.Log(context.Background(), reportLevel(flags), pMessage,
			"layer", pLayerPrefix, "code", messageCode)
		return vk.Bool32(vk.False)
	}
}

func reportLevel(flags vk.DebugReportFlags) slog.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return slog.LevelError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0,
		flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return slog.LevelWarn
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
