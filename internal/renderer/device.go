package renderer

// LogicalDevice is an opened device and the single queue used for both
// graphics submission and presentation.
type LogicalDevice struct {
	Device Device
	Queue  Queue
}

// CreateLogicalDevice opens sel.GPU with one queue of priority 1.0 from the
// selected family and the swapchain extension as its only extension. The
// queue is retrieved right away.
func CreateLogicalDevice(drv Driver, sel PhysicalDeviceSelection) (LogicalDevice, error) {
	if !sel.Valid() {
		return LogicalDevice{}, configErr(ErrNoSuitableDevice, nil, "create device from an empty selection")
	}

	device, err := drv.CreateDevice(sel.GPU, DeviceCreateInfo{
		Queues: []DeviceQueueCreateInfo{
			{
				FamilyIndex: sel.QueueFamily,
				Priorities:  []float32{1.0},
			},
		},
		Extensions: []string{SwapchainExtension},
	})
	if err != nil {
		return LogicalDevice{}, resourceErr(ErrDeviceCreationFailed, err, "create device on queue family %d", sel.QueueFamily)
	}

	return LogicalDevice{
		Device: device,
		Queue:  drv.GetQueue(device, sel.QueueFamily, 0),
	}, nil
}
