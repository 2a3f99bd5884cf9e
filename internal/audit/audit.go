// Package audit derives network/IPAM-membership facts from discovered
// devices. It flattens the nested per-device subnet references into a
// normalized record list and classifies each subnet by IPAM registration.
package audit

import (
	"github.com/ipamtools/ipamdrift/internal/logging"
	"github.com/ipamtools/ipamdrift/internal/wapi"
)

// NetworkRecord is one discovered subnet observation: the subnet, the device
// it was seen from, and whether the subnet is registered in IPAM.
type NetworkRecord struct {
	Network string `json:"network"`
	Device  string `json:"device"`
	InIPAM  bool   `json:"in_ipam"`
}

// Summary holds aggregate counts over a record list.
type Summary struct {
	Total     int
	InIPAM    int
	NotInIPAM int
}

// Flatten produces one record per (device, subnet) pair. Devices without
// network references contribute nothing. A subnet counts as registered when
// the appliance returned an IPAM object reference for it.
func Flatten(devices []wapi.Device) []NetworkRecord {
	var records []NetworkRecord

	for i := range devices {
		device := &devices[i]
		if len(device.NetworkInfos) == 0 {
			logging.Debug("No networks found for device", "device", device.Name)
			continue
		}
		for j := range device.NetworkInfos {
			info := &device.NetworkInfos[j]
			records = append(records, NetworkRecord{
				Network: info.NetworkStr,
				Device:  device.Name,
				InIPAM:  info.InIPAM(),
			})
		}
	}

	return records
}

// NotInIPAM filters a record list down to subnets missing from IPAM.
func NotInIPAM(records []NetworkRecord) []NetworkRecord {
	var missing []NetworkRecord
	for _, record := range records {
		if !record.InIPAM {
			missing = append(missing, record)
		}
	}
	return missing
}

// Summarize computes aggregate counts for log and table output.
func Summarize(records []NetworkRecord) Summary {
	summary := Summary{Total: len(records)}
	for _, record := range records {
		if record.InIPAM {
			summary.InIPAM++
		} else {
			summary.NotInIPAM++
		}
	}
	return summary
}
