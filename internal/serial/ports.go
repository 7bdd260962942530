package serial

import (
	"fmt"

	"go.bug.st/serial/enumerator"
)

// PortInfo holds details about a serial port.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// Desc is a short human-readable description for lists.
func (p PortInfo) Desc() string {
	if !p.IsUSB {
		return ""
	}
	desc := fmt.Sprintf("USB %s:%s", p.VID, p.PID)
	if p.Product != "" {
		desc += " " + p.Product
	}
	if p.SerialNumber != "" {
		desc += " SN " + p.SerialNumber
	}
	return desc
}

// ListPorts returns available serial ports.
func ListPorts() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var result []PortInfo
	for _, p := range ports {
		result = append(result, PortInfo{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
		})
	}
	return result, nil
}
