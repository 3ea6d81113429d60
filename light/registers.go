package light

// Register is an APDS-9306 register address.
type Register byte

const (
	RegMainCtrl       Register = 0x00
	RegMeasRate       Register = 0x04
	RegGain           Register = 0x05
	RegPartID         Register = 0x06
	RegMainStatus     Register = 0x07
	RegClearData0     Register = 0x0A
	RegClearData1     Register = 0x0B
	RegClearData2     Register = 0x0C
	RegData0          Register = 0x0D
	RegData1          Register = 0x0E
	RegData2          Register = 0x0F
	RegIntCfg         Register = 0x19
	RegIntPersistence Register = 0x1A
	RegThresUp0       Register = 0x21
	RegThresUp1       Register = 0x22
	RegThresUp2       Register = 0x23
	RegThresLow0      Register = 0x24
	RegThresLow1      Register = 0x25
	RegThresLow2      Register = 0x26
	RegThresVar       Register = 0x27
)

func (r Register) String() string {
	switch r {
	case RegMainCtrl:
		return "MAIN_CTRL"
	case RegMeasRate:
		return "ALS_MEAS_RATE"
	case RegGain:
		return "ALS_GAIN"
	case RegPartID:
		return "PART_ID"
	case RegMainStatus:
		return "MAIN_STATUS"
	case RegClearData0, RegClearData1, RegClearData2:
		return "CLEAR_DATA"
	case RegData0, RegData1, RegData2:
		return "ALS_DATA"
	case RegIntCfg:
		return "INT_CFG"
	case RegIntPersistence:
		return "INT_PERSISTENCE"
	case RegThresUp0, RegThresUp1, RegThresUp2:
		return "ALS_THRES_UP"
	case RegThresLow0, RegThresLow1, RegThresLow2:
		return "ALS_THRES_LOW"
	case RegThresVar:
		return "ALS_THRES_VAR"
	default:
		return "UNKNOWN"
	}
}

// MAIN_CTRL bits
const (
	mainCtrlSWReset byte = 1 << 4
	mainCtrlALSEn   byte = 1 << 1
)

// MAIN_STATUS bits
const (
	statusPowerOn   byte = 1 << 5
	statusInterrupt byte = 1 << 4
	statusData      byte = 1 << 3
)

// ALS_MEAS_RATE layout: resolution on bits 6:4, measurement rate on bits 2:0
const (
	measRateResolutionShift = 4
	measRateResolutionMask  = 0b0111_0000
	measRateRateMask        = 0b0000_0111
	gainMask                = 0b0000_0111
)

// INT_CFG layout
const (
	intCfgSourceShift = 4
	intCfgSourceMask  = 0b0011_0000
	intCfgVarMode     = 1 << 3
	intCfgEnable      = 1 << 2
)

// INT_PERSISTENCE layout
const (
	persistenceShift = 4
	persistenceMax   = 15
)

const (
	dataMask      = 0xFFFFF
	thresVarMask  = 0b0000_0111
	partIDAPDS    = 0xB1
	partIDAPDS065 = 0xB3
)
