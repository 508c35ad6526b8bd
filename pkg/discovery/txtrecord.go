package discovery

import (
	"fmt"
	"strings"

	"github.com/enbility/zeroconf/v3"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates the announcement TXT records for an appliance.
func EncodeTXT(d *DiscoveredDevice) TXTRecordMap {
	enabled := "0"
	if d.APIEnabled {
		enabled = "1"
	}
	return TXTRecordMap{
		TXTKeyProductName: d.ProductName,
		TXTKeyProductType: d.ProductType,
		TXTKeySerial:      d.Serial,
		TXTKeyPath:        d.Path,
		TXTKeyAPIEnabled:  enabled,
	}
}

// DecodeTXT parses announcement TXT records. All five keys are required,
// and api_enabled accepts only the literals "1" and "0"; anything else
// makes the whole record malformed.
func DecodeTXT(txt TXTRecordMap) (*DiscoveredDevice, error) {
	d := &DiscoveredDevice{}

	var ok bool
	if d.ProductName, ok = txt[TXTKeyProductName]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyProductName)
	}
	if d.ProductType, ok = txt[TXTKeyProductType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyProductType)
	}
	if d.Serial, ok = txt[TXTKeySerial]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeySerial)
	}
	if d.Path, ok = txt[TXTKeyPath]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyPath)
	}

	enabled, ok := txt[TXTKeyAPIEnabled]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyAPIEnabled)
	}
	switch enabled {
	case "1":
		d.APIEnabled = true
	case "0":
		d.APIEnabled = false
	default:
		return nil, fmt.Errorf("%w: api_enabled %q", ErrInvalidTXTRecord, enabled)
	}

	return d, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, the format mDNS libraries use.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a
// TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// deviceFromEntry builds a DiscoveredDevice from a raw zeroconf entry.
// The TXT records must decode strictly.
func deviceFromEntry(entry *zeroconf.ServiceEntry) (*DiscoveredDevice, error) {
	d, err := DecodeTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	d.Name = entry.Instance
	d.Host = entry.HostName
	d.Port = entry.Port
	d.Addrs = addrs
	return d, nil
}
