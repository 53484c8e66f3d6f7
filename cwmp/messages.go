package cwmp

import (
	"fmt"
	"strings"

	"github.com/nanoncore/nano-access/model"
)

// Event codes carried in Inform messages.
const (
	EventBootstrap         = "0 BOOTSTRAP"
	EventBoot              = "1 BOOT"
	EventPeriodic          = "2 PERIODIC"
	EventScheduled         = "3 SCHEDULED"
	EventValueChange       = "4 VALUE CHANGE"
	EventConnectionRequest = "6 CONNECTION REQUEST"
	EventTransferComplete  = "7 TRANSFER COMPLETE"
)

// Inform is the CPE's session-opening report: who it is, why it called
// and a snapshot of its management parameters.
type Inform struct {
	ID           string
	Manufacturer string
	OUI          string
	ProductClass string
	SerialNumber string
	Events       []string
	MaxEnvelopes int
	CurrentTime  string
	RetryCount   int
	Parameters   map[string]string
}

func (m *Inform) RPCName() string   { return "Inform" }
func (m *Inform) SessionID() string { return m.ID }

// Identity returns the stable composite device identity.
func (m *Inform) Identity() model.CPEIdentity {
	return model.CPEIdentity{
		OUI:          m.OUI,
		ProductClass: m.ProductClass,
		SerialNumber: m.SerialNumber,
	}
}

// IsEvent reports whether the inform carries the given event code.
func (m *Inform) IsEvent(code string) bool {
	for _, event := range m.Events {
		if event == code {
			return true
		}
	}
	return false
}

// ParameterSuffix returns the first parameter whose name ends with
// suffix. The TR-098 and TR-181 data models root the same leaves under
// different prefixes, so informs are read by suffix.
func (m *Inform) ParameterSuffix(suffix string) string {
	for name, value := range m.Parameters {
		if strings.HasSuffix(name, suffix) {
			return value
		}
	}
	return ""
}

// TransferComplete reports the outcome of an earlier Download.
type TransferComplete struct {
	ID           string
	CommandKey   string
	FaultCode    int
	FaultString  string
	StartTime    string
	CompleteTime string
}

func (m *TransferComplete) RPCName() string   { return "TransferComplete" }
func (m *TransferComplete) SessionID() string { return m.ID }

// Failed reports whether the transfer ended in error.
func (m *TransferComplete) Failed() bool { return m.FaultCode != 0 }

// GetParameterValuesResponse carries the values a GetParameterValues
// asked for.
type GetParameterValuesResponse struct {
	ID         string
	Parameters map[string]string
}

func (m *GetParameterValuesResponse) RPCName() string   { return "GetParameterValuesResponse" }
func (m *GetParameterValuesResponse) SessionID() string { return m.ID }

// SetParameterValuesResponse acknowledges a SetParameterValues. A
// non-zero status means the changes were not applied as requested.
type SetParameterValuesResponse struct {
	ID     string
	Status int
}

func (m *SetParameterValuesResponse) RPCName() string   { return "SetParameterValuesResponse" }
func (m *SetParameterValuesResponse) SessionID() string { return m.ID }

// DownloadResponse acknowledges a Download request. Status zero means
// the transfer already finished; the TransferComplete event settles the
// rest.
type DownloadResponse struct {
	ID           string
	Status       int
	StartTime    string
	CompleteTime string
}

func (m *DownloadResponse) RPCName() string   { return "DownloadResponse" }
func (m *DownloadResponse) SessionID() string { return m.ID }

// RebootResponse acknowledges a Reboot request.
type RebootResponse struct {
	ID string
}

func (m *RebootResponse) RPCName() string   { return "RebootResponse" }
func (m *RebootResponse) SessionID() string { return m.ID }

// FactoryResetResponse acknowledges a FactoryReset request.
type FactoryResetResponse struct {
	ID string
}

func (m *FactoryResetResponse) RPCName() string   { return "FactoryResetResponse" }
func (m *FactoryResetResponse) SessionID() string { return m.ID }

// GetRPCMethodsResponse lists the methods the CPE supports.
type GetRPCMethodsResponse struct {
	ID      string
	Methods []string
}

func (m *GetRPCMethodsResponse) RPCName() string   { return "GetRPCMethodsResponse" }
func (m *GetRPCMethodsResponse) SessionID() string { return m.ID }

// Unknown is a syntactically valid RPC the server does not recognize.
// It is acknowledged with an empty envelope, never an error.
type Unknown struct {
	ID     string
	Method string
}

func (m *Unknown) RPCName() string   { return m.Method }
func (m *Unknown) SessionID() string { return m.ID }

// InformResponse closes the Inform exchange when no task is dispatched
// in its place.
type InformResponse struct {
	ID           string
	MaxEnvelopes int
}

func (m *InformResponse) RPCName() string   { return "InformResponse" }
func (m *InformResponse) SessionID() string { return m.ID }

func (m *InformResponse) Envelope() []byte {
	maxEnvelopes := m.MaxEnvelopes
	if maxEnvelopes <= 0 {
		maxEnvelopes = 1
	}
	body := fmt.Sprintf("<cwmp:InformResponse>\n<MaxEnvelopes>%d</MaxEnvelopes>\n</cwmp:InformResponse>\n", maxEnvelopes)
	return envelope(m.ID, body)
}

// TransferCompleteResponse acknowledges a TransferComplete event.
type TransferCompleteResponse struct {
	ID string
}

func (m *TransferCompleteResponse) RPCName() string   { return "TransferCompleteResponse" }
func (m *TransferCompleteResponse) SessionID() string { return m.ID }

func (m *TransferCompleteResponse) Envelope() []byte {
	return envelope(m.ID, "<cwmp:TransferCompleteResponse></cwmp:TransferCompleteResponse>\n")
}

// GetParameterValues asks the CPE for the named parameters. Partial
// paths (trailing dot) pull whole subtrees.
type GetParameterValues struct {
	ID             string
	ParameterNames []string
}

func (m *GetParameterValues) RPCName() string   { return "GetParameterValues" }
func (m *GetParameterValues) SessionID() string { return m.ID }

func (m *GetParameterValues) Envelope() []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<cwmp:GetParameterValues>\n<ParameterNames soapenc:arrayType=\"xsd:string[%d]\">\n", len(m.ParameterNames))
	for _, name := range m.ParameterNames {
		fmt.Fprintf(&sb, "<string>%s</string>\n", escape(name))
	}
	sb.WriteString("</ParameterNames>\n</cwmp:GetParameterValues>\n")
	return envelope(m.ID, sb.String())
}

// SetParameterValues pushes parameter changes to the CPE. The parameter
// key ties the eventual acknowledgement back to the task that asked.
type SetParameterValues struct {
	ID           string
	ParameterKey string
	Parameters   []model.CPEParameter
}

func (m *SetParameterValues) RPCName() string   { return "SetParameterValues" }
func (m *SetParameterValues) SessionID() string { return m.ID }

func (m *SetParameterValues) Envelope() []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<cwmp:SetParameterValues>\n<ParameterList soapenc:arrayType=\"cwmp:ParameterValueStruct[%d]\">\n", len(m.Parameters))
	for _, param := range m.Parameters {
		xsdType := param.Type
		if xsdType == "" {
			xsdType = "xsd:string"
		}
		sb.WriteString("<ParameterValueStruct>\n")
		fmt.Fprintf(&sb, "<Name>%s</Name>\n", escape(param.Name))
		fmt.Fprintf(&sb, "<Value xsi:type=\"%s\">%s</Value>\n", escape(xsdType), escape(param.Value))
		sb.WriteString("</ParameterValueStruct>\n")
	}
	sb.WriteString("</ParameterList>\n")
	fmt.Fprintf(&sb, "<ParameterKey>%s</ParameterKey>\n", escape(m.ParameterKey))
	sb.WriteString("</cwmp:SetParameterValues>\n")
	return envelope(m.ID, sb.String())
}

// Download instructs the CPE to fetch and apply a file.
type Download struct {
	ID         string
	CommandKey string
	Spec       model.DownloadSpec
}

func (m *Download) RPCName() string   { return "Download" }
func (m *Download) SessionID() string { return m.ID }

func (m *Download) Envelope() []byte {
	fileType := m.Spec.FileType
	if fileType == "" {
		fileType = "1 Firmware Upgrade Image"
	}

	var sb strings.Builder
	sb.WriteString("<cwmp:Download>\n")
	fmt.Fprintf(&sb, "<CommandKey>%s</CommandKey>\n", escape(m.CommandKey))
	fmt.Fprintf(&sb, "<FileType>%s</FileType>\n", escape(fileType))
	fmt.Fprintf(&sb, "<URL>%s</URL>\n", escape(m.Spec.URL))
	fmt.Fprintf(&sb, "<Username>%s</Username>\n", escape(m.Spec.Username))
	fmt.Fprintf(&sb, "<Password>%s</Password>\n", escape(m.Spec.Password))
	fmt.Fprintf(&sb, "<FileSize>%d</FileSize>\n", m.Spec.FileSize)
	fmt.Fprintf(&sb, "<TargetFileName>%s</TargetFileName>\n", escape(m.Spec.TargetFileName))
	fmt.Fprintf(&sb, "<DelaySeconds>%d</DelaySeconds>\n", m.Spec.DelaySeconds)
	sb.WriteString("<SuccessURL></SuccessURL>\n<FailureURL></FailureURL>\n")
	sb.WriteString("</cwmp:Download>\n")
	return envelope(m.ID, sb.String())
}

// Reboot restarts the CPE.
type Reboot struct {
	ID         string
	CommandKey string
}

func (m *Reboot) RPCName() string   { return "Reboot" }
func (m *Reboot) SessionID() string { return m.ID }

func (m *Reboot) Envelope() []byte {
	body := fmt.Sprintf("<cwmp:Reboot>\n<CommandKey>%s</CommandKey>\n</cwmp:Reboot>\n", escape(m.CommandKey))
	return envelope(m.ID, body)
}

// FactoryReset returns the CPE to factory defaults.
type FactoryReset struct {
	ID string
}

func (m *FactoryReset) RPCName() string   { return "FactoryReset" }
func (m *FactoryReset) SessionID() string { return m.ID }

func (m *FactoryReset) Envelope() []byte {
	return envelope(m.ID, "<cwmp:FactoryReset></cwmp:FactoryReset>\n")
}
