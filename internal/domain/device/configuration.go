package device

// Configuration is the persisted device configuration shared by both modes.
type Configuration struct {
	// NetworkName is the wireless network SSID.
	NetworkName string
	// NetworkSecret is the wireless network passphrase.
	NetworkSecret string
	// Mode is the decoded operating mode.
	Mode Mode
	// NotificationCredential is the bearer token for the notification endpoint.
	NotificationCredential string
}

// Complete reports whether every field is populated.
func (c Configuration) Complete() bool {
	return c.NetworkName != "" &&
		c.NetworkSecret != "" &&
		c.Mode.Valid() &&
		c.NotificationCredential != ""
}

// Masked returns a copy safe for logs: secrets are replaced by a fixed marker.
func (c Configuration) Masked() Configuration {
	c.NetworkSecret = mask(c.NetworkSecret)
	c.NotificationCredential = mask(c.NotificationCredential)

	return c
}

// mask hides a secret while keeping the fact that it is set visible.
func mask(s string) string {
	if s == "" {
		return ""
	}

	return "******"
}
