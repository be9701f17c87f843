package appliance

import "fmt"

// Listing element names.
const (
	ElementRouters = "virtual-routers"
	ElementPorts   = "router-connections"
)

// RecordFields are the fields requested for every geometry listing.
var RecordFields = []string{"eid", "x", "y", "height", "width"}

// Command names accepted under /cli-json/.
const (
	CmdAddVR         = "add_vr"
	CmdApplyVRConfig = "apply_vr_cfg"
	CmdShowVR        = "nc_show_vr"
	CmdShowVRCX      = "nc_show_vrcx"
	CmdRemoveVR      = "rm_vr"
	CmdAddVRCX       = "add_vrcx"
	CmdAddRDD        = "add_rdd"
)

// RouterListPath lists the virtual routers of a resource.
func RouterListPath(resource int) string { return fmt.Sprintf("/vr/1/%d/list", resource) }

// PortListPath lists the router connections of a resource.
func PortListPath(resource int) string { return fmt.Sprintf("/vrcx/1/%d/list", resource) }

// PortRefreshPath asks the appliance to refresh every router of a resource.
func PortRefreshPath(resource int) string { return fmt.Sprintf("/vr/1/%d/all", resource) }

// GUIRefreshPath asks the appliance to redraw the canvas of a resource.
func GUIRefreshPath(resource int) string { return fmt.Sprintf("/vr/1/%d/0", resource) }

// CommandPath returns the path of a /cli-json/ command.
func CommandPath(cmd string) string { return "/cli-json/" + cmd }

// Action is the body of refresh requests.
type Action struct {
	Action string `json:"action"`
}

// Refresh is the action posted to the refresh paths.
var Refresh = Action{Action: "refresh"}

// AddVR creates a virtual router.
type AddVR struct {
	Alias    string `json:"alias"`
	Shelf    int    `json:"shelf"`
	Resource int    `json:"resource"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Flags    int    `json:"flags"`
}

// ApplyVRConfig commits pending router configuration on a resource.
type ApplyVRConfig struct {
	Shelf    int `json:"shelf"`
	Resource int `json:"resource"`
}

// ShowVR asks the appliance to re-announce routers.
type ShowVR struct {
	Shelf    int    `json:"shelf"`
	Resource int    `json:"resource"`
	Router   string `json:"router"`
}

// ShowVRCX asks the appliance to re-announce router connections.
type ShowVRCX struct {
	Shelf    int    `json:"shelf"`
	Resource int    `json:"resource"`
	CXName   string `json:"cx_name"`
}

// RemoveVR deletes a virtual router.
type RemoveVR struct {
	Shelf      int    `json:"shelf"`
	Resource   int    `json:"resource"`
	RouterName string `json:"router_name"`
}

// AddVRCX creates a router connection or updates its placement. Optional
// fields are omitted when unset so a move only carries a position.
type AddVRCX struct {
	Shelf     int    `json:"shelf"`
	Resource  int    `json:"resource"`
	VRName    string `json:"vr_name"`
	LocalDev  string `json:"local_dev"`
	RemoteDev string `json:"remote_dev,omitempty"`
	X         *int   `json:"x,omitempty"`
	Y         *int   `json:"y,omitempty"`
	Subnets   string `json:"subnets,omitempty"`
	Nexthop   string `json:"nexthop,omitempty"`
	Flags     *int   `json:"flags,omitempty"`
}

// AddRDD creates a redirect device pair.
type AddRDD struct {
	Shelf      int    `json:"shelf"`
	Resource   int    `json:"resource"`
	Port       string `json:"port"`
	PeerIfname string `json:"peer_ifname"`
}
