package client

import "github.com/jmylchreest/smartscreen/internal/capability"

// SetFirmwareVersion reports a new firmware version. The software info
// sender is created on first use if the build did not create one; it is
// never created twice.
func (c *Client) SetFirmwareVersion(v capability.FirmwareVersion) bool {
	if c.closed.Load() {
		return false
	}
	if !v.Valid() {
		c.logger.Error("firmware version rejected", "reason", "invalidFirmwareVersion", "version", v)
		return false
	}

	if holder := c.softwareInfo.Load(); holder != nil {
		return holder.sender.SetFirmwareVersion(v)
	}

	c.firmwareMu.Lock()
	defer c.firmwareMu.Unlock()

	if holder := c.softwareInfo.Load(); holder != nil {
		return holder.sender.SetFirmwareVersion(v)
	}

	c.env.Request.Software.FirmwareVersion = v
	sender, err := mustCreate(c, "unableToCreateSoftwareInfoSender", c.env.Request.Factories.SoftwareInfoSender)
	if err != nil {
		c.logger.Error("firmware version not reported", "reason", "unableToCreateSoftwareInfoSender", "error", err)
		return false
	}
	c.softwareInfo.Store(&softwareInfoHolder{sender: sender})
	c.logger.Info("software info sender created", "version", v)
	return true
}
