package wapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ipamtools/ipamdrift/internal/errors"
	"github.com/ipamtools/ipamdrift/internal/logging"
)

const (
	// DeviceEndpoint is the WAPI object holding discovery scan results.
	DeviceEndpoint = "discovery:device"

	// deviceReturnFields are the per-device fields the report needs.
	deviceReturnFields = "address,name,network_view,extattrs,network_infos"
)

// Device is a host record produced by the appliance's network discovery scan.
type Device struct {
	Ref          string             `json:"_ref,omitempty"`
	Address      string             `json:"address"`
	Name         string             `json:"name"`
	NetworkView  string             `json:"network_view"`
	ExtAttrs     map[string]ExtAttr `json:"extattrs,omitempty"`
	NetworkInfos []NetworkInfo      `json:"network_infos,omitempty"`
}

// ExtAttr is a NIOS extensible attribute value.
type ExtAttr struct {
	Value interface{} `json:"value"`
}

// NetworkInfo describes one subnet a device was observed on. Network holds
// the IPAM object reference and is empty when the subnet is not registered;
// NetworkStr always carries the CIDR text.
type NetworkInfo struct {
	Network    string `json:"network,omitempty"`
	NetworkStr string `json:"network_str"`
}

// InIPAM reports whether the subnet is registered as a managed network.
func (n *NetworkInfo) InIPAM() bool {
	return n.Network != ""
}

// devicePage is one page of a paged discovery:device response
// (_return_as_object=1 shape).
type devicePage struct {
	Result     []Device `json:"result"`
	NextPageID string   `json:"next_page_id,omitempty"`
}

// FetchDevices retrieves the full discovered-device list, following the
// next_page_id cursor until the collection is exhausted.
//
// A failure on the first page returns no devices. A failure on a later page
// stops paging and returns everything retrieved so far alongside a
// PAGING_INTERRUPTED error; callers may treat that as partial success.
func (c *Client) FetchDevices(ctx context.Context, pageSize int) ([]Device, error) {
	query := url.Values{}
	query.Set("_paging", "1")
	query.Set("_max_results", strconv.Itoa(pageSize))
	query.Set("_return_as_object", "1")
	query.Set("_return_fields", deviceReturnFields)

	logging.InfoWAPI("Retrieving discovered devices", DeviceEndpoint, "page_size", pageSize)

	var devices []Device
	page := 1
	for {
		var resp devicePage
		if err := c.GetJSON(ctx, DeviceEndpoint, query, &resp); err != nil {
			if page == 1 {
				logging.ErrorWAPI("Failed to retrieve discovered devices", DeviceEndpoint, err)
				return nil, err
			}
			logging.ErrorWAPI("Failed to retrieve page, returning retrieved devices",
				DeviceEndpoint, err, "page", page, "devices", len(devices))
			return devices, errors.ErrPagingInterrupted(DeviceEndpoint, page, err)
		}

		devices = append(devices, resp.Result...)
		logging.Debug("Page retrieved", "endpoint", DeviceEndpoint,
			"page", page, "devices", len(resp.Result))

		if resp.NextPageID == "" {
			break
		}
		query.Set("_page_id", resp.NextPageID)
		page++
	}

	logging.InfoWAPI("Device retrieval complete", DeviceEndpoint,
		"pages", page, "devices", len(devices))
	return devices, nil
}
