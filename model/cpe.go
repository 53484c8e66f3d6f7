package model

import (
	"strings"
	"time"
)

// CPEIdentity is the stable composite identity of a TR-069 device,
// independent of which ONU record, if any, it is linked to.
type CPEIdentity struct {
	// OUI is the manufacturer's organizationally unique identifier
	OUI string `json:"oui"`

	// ProductClass distinguishes models under one OUI
	ProductClass string `json:"product_class"`

	// SerialNumber is unique within OUI+ProductClass
	SerialNumber string `json:"serial_number"`
}

// Key returns the composite key used to index device records.
func (id CPEIdentity) Key() string {
	return strings.Join([]string{id.OUI, id.ProductClass, id.SerialNumber}, "-")
}

// Valid reports whether all three components are present.
func (id CPEIdentity) Valid() bool {
	return id.OUI != "" && id.SerialNumber != ""
}

// CPEDevice is the record kept per TR-069 device. Created on first
// Inform, updated on every subsequent one.
type CPEDevice struct {
	Identity CPEIdentity `json:"identity"`

	// Manufacturer as reported in the Inform DeviceId
	Manufacturer string `json:"manufacturer,omitempty"`

	// SoftwareVersion and HardwareVersion from the informed parameters
	SoftwareVersion string `json:"software_version,omitempty"`
	HardwareVersion string `json:"hardware_version,omitempty"`

	// ConnectionRequestURL is where the ACS can solicit an immediate Inform
	ConnectionRequestURL string `json:"connection_request_url,omitempty"`

	// ExternalIP as informed, when present
	ExternalIP string `json:"external_ip,omitempty"`

	// Online is set on Inform; the caller ages it out
	Online bool `json:"online"`

	// LastInform is the time of the most recent Inform
	LastInform time.Time `json:"last_inform"`

	// FirstContact is when the record was created
	FirstContact time.Time `json:"first_contact"`

	// Parameters caches the last-known parameter values by full path
	Parameters map[string]string `json:"parameters,omitempty"`
}

// TaskKind enumerates the queued RPC intents.
type TaskKind string

const (
	TaskGetParameterValues TaskKind = "get_parameter_values"
	TaskSetParameterValues TaskKind = "set_parameter_values"
	TaskDownload           TaskKind = "download"
	TaskReboot             TaskKind = "reboot"
	TaskFactoryReset       TaskKind = "factory_reset"
)

// TaskState is the lifecycle of a queued task. A task moves
// pending → in_progress when dispatched in reply to an Inform, and to
// completed/failed when the device's response arrives. A task whose
// response never arrives stays in_progress and is re-dispatched on the
// next Inform; no separate timeout state exists.
type TaskState string

const (
	TaskPending    TaskState = "pending"
	TaskInProgress TaskState = "in_progress"
	TaskCompleted  TaskState = "completed"
	TaskFailed     TaskState = "failed"
)

// CPEParameter is one (name, value, type) triple for SetParameterValues.
type CPEParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`

	// Type is the XSD type, "xsd:string" when empty
	Type string `json:"type,omitempty"`
}

// DownloadSpec parameterizes a Download task (firmware or config push).
type DownloadSpec struct {
	// FileType is the TR-069 file type string
	// (e.g. "1 Firmware Upgrade Image", "3 Vendor Configuration File")
	FileType string `json:"file_type"`

	// URL is where the device fetches the file from
	URL string `json:"url"`

	// Username and Password authenticate the fetch, when required
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// FileSize in bytes, 0 when unknown
	FileSize int64 `json:"file_size,omitempty"`

	// TargetFileName is the name the device stores the file under
	TargetFileName string `json:"target_file_name,omitempty"`

	// DelaySeconds postpones the transfer on the device side
	DelaySeconds int `json:"delay_seconds,omitempty"`
}

// Task is one queued remote-procedure intent against one device.
type Task struct {
	// ID is the task's own identifier
	ID string `json:"id"`

	// DeviceKey is the CPEIdentity composite key
	DeviceKey string `json:"device_key"`

	Kind  TaskKind  `json:"kind"`
	State TaskState `json:"state"`

	// CommandKey correlates the eventual response back to this task
	CommandKey string `json:"command_key"`

	// ParameterNames feeds GetParameterValues
	ParameterNames []string `json:"parameter_names,omitempty"`

	// Parameters feeds SetParameterValues
	Parameters []CPEParameter `json:"parameters,omitempty"`

	// Download feeds Download
	Download *DownloadSpec `json:"download,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	DispatchedAt time.Time `json:"dispatched_at,omitempty"`
	CompletedAt  time.Time `json:"completed_at,omitempty"`

	// LastError describes why the task failed
	LastError string `json:"last_error,omitempty"`
}

// Terminal reports whether the task has reached a final state.
func (t *Task) Terminal() bool {
	return t.State == TaskCompleted || t.State == TaskFailed
}
