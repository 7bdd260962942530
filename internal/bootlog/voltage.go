package bootlog

// ADC parameters of the battery divider.
const (
	ADCFullScale   = 4095
	ADCReference   = 3.3
	DividerRatio   = 2
	MinBatteryVolt = 1.0
)

// ToVoltage scales a raw ADC reading to volts. Values outside the ADC range
// go through the same formula without clamping.
func ToVoltage(raw int) float64 {
	return (float64(raw) / ADCFullScale) * ADCReference * DividerRatio
}

// BatteryPresent reports whether v is at or above the no-battery threshold.
func BatteryPresent(v float64) bool {
	return v >= MinBatteryVolt
}
