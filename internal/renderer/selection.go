package renderer

// PhysicalDeviceSelection is a GPU together with a queue family verified to
// support both graphics work and presentation to the surface.
type PhysicalDeviceSelection struct {
	GPU         PhysicalDevice
	QueueFamily int
}

// noSelection is returned whenever selection fails.
var noSelection = PhysicalDeviceSelection{QueueFamily: -1}

func (s PhysicalDeviceSelection) Valid() bool {
	return s.GPU != 0 && s.QueueFamily >= 0
}

// SelectPhysicalDevice walks the physical devices and their queue families in
// enumeration order and returns the first pair with graphics capability that
// can present to surface. Presentation support is only queried for graphics
// families. The search stops at the first match.
func SelectPhysicalDevice(drv Driver, instance Instance, surface Surface, limits Limits) (PhysicalDeviceSelection, error) {
	gpus, err := drv.EnumeratePhysicalDevices(instance)
	if err != nil {
		return noSelection, configErr(ErrDeviceQueryFailed, err, "enumerate physical devices")
	}
	if err := checkCapacity("physical devices", len(gpus), limits.MaxPhysicalDevices); err != nil {
		return noSelection, err
	}

	for _, gpu := range gpus {
		families, err := drv.QueueFamilies(gpu)
		if err != nil {
			return noSelection, configErr(ErrDeviceQueryFailed, err, "queue family properties")
		}
		if err := checkCapacity("queue families", len(families), limits.MaxQueueFamilies); err != nil {
			return noSelection, err
		}

		for idx, family := range families {
			if family.Flags&QueueGraphics == 0 {
				continue
			}

			supported, err := drv.SurfaceSupport(gpu, idx, surface)
			if err != nil {
				return noSelection, configErr(ErrSurfaceQueryFailed, err, "surface support for queue family %d", idx)
			}
			if supported {
				return PhysicalDeviceSelection{GPU: gpu, QueueFamily: idx}, nil
			}
		}
	}

	return noSelection, configErr(ErrNoSuitableDevice, nil, "select physical device among %d", len(gpus))
}
