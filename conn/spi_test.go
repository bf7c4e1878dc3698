package conn

import "testing"

func TestDevicePath(t *testing.T) {
	tests := []struct {
		Bus, Device int
		Want        string
	}{
		{0, 0, "/dev/spidev0.0"},
		{0, 1, "/dev/spidev0.1"},
		{1, 2, "/dev/spidev1.2"},
	}
	for _, test := range tests {
		t.Run(test.Want, func(it *testing.T) {
			if v := DevicePath(test.Bus, test.Device); v != test.Want {
				it.Errorf("expected %q, got %q", test.Want, v)
			}
		})
	}
}

func TestSPIMode(t *testing.T) {
	if SPIMode3 != SPIMode(spiCPOL|spiCPHA) {
		t.Errorf("expected mode 3 to set CPOL and CPHA, got %#02x", SPIMode3)
	}
	if SPIMode0 != 0 {
		t.Errorf("expected mode 0 to be zero, got %#02x", SPIMode0)
	}
}

func TestSPIUnchanged(t *testing.T) {
	// Unchanged settings return before the device is touched.
	c := &SPI{mode: SPIMode3, speed: 8_000_000}
	if err := c.SetMode(SPIMode3 | 0xf0); err != nil {
		t.Errorf("expected masked mode 3 to be a no-op, got %v", err)
	}
	for _, hz := range []int{-1, 0, 8_000_000} {
		if err := c.SetMaxSpeed(hz); err != nil {
			t.Errorf("%d Hz: expected no-op, got %v", hz, err)
		}
	}
	if c.speed != 8_000_000 {
		t.Errorf("expected speed to stay 8000000, got %d", c.speed)
	}
}
