package wapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipamtools/ipamdrift/internal/errors"
)

// pagedDeviceServer serves a fixed set of device pages keyed by _page_id.
// Page cursors are opaque strings; the empty key is the first page.
type pagedDeviceServer struct {
	pages    map[string]devicePage
	requests []string
	failOn   string // page id whose request should fail
}

func (s *pagedDeviceServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pageID := r.URL.Query().Get("_page_id")
	s.requests = append(s.requests, pageID)

	if s.failOn != "" && pageID == s.failOn {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	page, ok := s.pages[pageID]
	if !ok {
		http.Error(w, "unknown page", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func makeDevice(name, cidr string, inIPAM bool) Device {
	info := NetworkInfo{NetworkStr: cidr}
	if inIPAM {
		info.Network = fmt.Sprintf("network/ZG5zLm5ldHdvcms:%s/default", cidr)
	}
	return Device{
		Address:      "10.0.0.1",
		Name:         name,
		NetworkView:  "default",
		NetworkInfos: []NetworkInfo{info},
	}
}

func TestFetchDevices(t *testing.T) {
	t.Run("single page", func(t *testing.T) {
		server := &pagedDeviceServer{
			pages: map[string]devicePage{
				"": {Result: []Device{
					makeDevice("router1", "10.0.0.0/24", true),
					makeDevice("switch1", "10.0.1.0/24", false),
				}},
			},
		}
		client, _ := newTestClient(t, server)

		devices, err := client.FetchDevices(context.Background(), 100)
		require.NoError(t, err)
		assert.Len(t, devices, 2)
		assert.Equal(t, "router1", devices[0].Name)
	})

	t.Run("follows the page cursor to exhaustion", func(t *testing.T) {
		server := &pagedDeviceServer{
			pages: map[string]devicePage{
				"":      {Result: []Device{makeDevice("d1", "10.0.0.0/24", true)}, NextPageID: "page2"},
				"page2": {Result: []Device{makeDevice("d2", "10.0.1.0/24", false)}, NextPageID: "page3"},
				"page3": {Result: []Device{makeDevice("d3", "10.0.2.0/24", true)}},
			},
		}
		client, _ := newTestClient(t, server)

		devices, err := client.FetchDevices(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, devices, 3)
		assert.Equal(t, []string{"", "page2", "page3"}, server.requests)
	})

	t.Run("sends paging parameters", func(t *testing.T) {
		var gotPaging, gotMax, gotAsObject, gotFields string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			gotPaging = q.Get("_paging")
			gotMax = q.Get("_max_results")
			gotAsObject = q.Get("_return_as_object")
			gotFields = q.Get("_return_fields")
			_ = json.NewEncoder(w).Encode(devicePage{})
		}))

		_, err := client.FetchDevices(context.Background(), 250)
		require.NoError(t, err)
		assert.Equal(t, "1", gotPaging)
		assert.Equal(t, "250", gotMax)
		assert.Equal(t, "1", gotAsObject)
		assert.Equal(t, deviceReturnFields, gotFields)
	})

	t.Run("first page failure returns no devices", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		devices, err := client.FetchDevices(context.Background(), 100)
		require.Error(t, err)
		assert.Nil(t, devices)
		assert.True(t, errors.IsCode(err, errors.CodeRequestFailed))
	})

	t.Run("later page failure returns partial result", func(t *testing.T) {
		server := &pagedDeviceServer{
			pages: map[string]devicePage{
				"":      {Result: []Device{makeDevice("d1", "10.0.0.0/24", true)}, NextPageID: "page2"},
				"page2": {Result: []Device{makeDevice("d2", "10.0.1.0/24", false)}, NextPageID: "page3"},
			},
			failOn: "page3",
		}
		client, _ := newTestClient(t, server)

		devices, err := client.FetchDevices(context.Background(), 1)
		require.Error(t, err)
		assert.True(t, errors.IsPartial(err), "mid-paging failure should be partial")
		assert.Len(t, devices, 2, "devices from completed pages should be kept")
	})

	t.Run("empty collection", func(t *testing.T) {
		server := &pagedDeviceServer{
			pages: map[string]devicePage{"": {}},
		}
		client, _ := newTestClient(t, server)

		devices, err := client.FetchDevices(context.Background(), 100)
		require.NoError(t, err)
		assert.Empty(t, devices)
	})
}

func TestNetworkInfoInIPAM(t *testing.T) {
	registered := NetworkInfo{
		Network:    "network/ZG5zLm5ldHdvcms:10.0.0.0/24/default",
		NetworkStr: "10.0.0.0/24",
	}
	unregistered := NetworkInfo{NetworkStr: "10.0.1.0/24"}

	assert.True(t, registered.InIPAM())
	assert.False(t, unregistered.InIPAM())
}

func TestDeviceJSONShape(t *testing.T) {
	// Shape of a real discovery:device result entry with nested
	// network_infos and extattrs.
	raw := `{
		"result": [{
			"_ref": "discovery:device/Li5kaXNjb3Zlcnk:10.1.0.5",
			"address": "10.1.0.5",
			"name": "core-sw-01",
			"network_view": "default",
			"extattrs": {"Site": {"value": "HQ"}},
			"network_infos": [
				{"network": "network/ZG5zLm5ldHdvcms:10.1.0.0/24/default", "network_str": "10.1.0.0/24"},
				{"network_str": "192.168.50.0/24"}
			]
		}],
		"next_page_id": "789c55904d"
	}`

	var page devicePage
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	require.Len(t, page.Result, 1)

	device := page.Result[0]
	assert.Equal(t, "core-sw-01", device.Name)
	assert.Equal(t, "HQ", device.ExtAttrs["Site"].Value)
	require.Len(t, device.NetworkInfos, 2)
	assert.True(t, device.NetworkInfos[0].InIPAM())
	assert.False(t, device.NetworkInfos[1].InIPAM())
	assert.Equal(t, "789c55904d", page.NextPageID)
}
