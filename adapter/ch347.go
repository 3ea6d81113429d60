package adapter

// WCH CH347 USB IDs. The bridge itself lives in adapter/ch347hid and is only
// compiled with the ch347 build tag.
const (
	CH347VendorID  = 0x1A86
	CH347ProductID = 0x55DC
)
