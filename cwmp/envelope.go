// Package cwmp implements the TR-069 (CWMP) SOAP message layer: typed
// RPC structs, envelope construction for server-to-CPE traffic and
// method dispatch for CPE-to-server traffic. The package is pure; HTTP
// transport and session policy live in the acs package.
package cwmp

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// SOAP 1.1 and CWMP namespaces.
const (
	NamespaceEnvelope = "http://schemas.xmlsoap.org/soap/envelope/"
	NamespaceEncoding = "http://schemas.xmlsoap.org/soap/encoding/"
	NamespaceXSD      = "http://www.w3.org/2001/XMLSchema"
	NamespaceXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	NamespaceCWMP     = "urn:dslforum-org:cwmp-1-0"
)

// Fault codes from the ACS code space (server-detected conditions).
const (
	FaultMethodNotSupported = 8000
	FaultRequestDenied      = 8001
	FaultInternalError      = 8002
	FaultInvalidArguments   = 8003
)

// Message is one CWMP RPC, inbound or outbound.
type Message interface {
	// RPCName is the method's local name in the SOAP body.
	RPCName() string
	// SessionID is the cwmp:ID header value, echoed into the reply.
	SessionID() string
}

// Outbound is a server-to-CPE RPC that serializes itself into a SOAP
// envelope.
type Outbound interface {
	Message
	Envelope() []byte
}

// envelope wraps a body fragment in the SOAP 1.1 skeleton with the
// cwmp-1-0 namespace bound. The cwmp:ID header is emitted only when the
// session carries one.
func envelope(id, body string) []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<soapenv:Envelope xmlns:soapenv="` + NamespaceEnvelope +
		`" xmlns:soapenc="` + NamespaceEncoding +
		`" xmlns:xsd="` + NamespaceXSD +
		`" xmlns:xsi="` + NamespaceXSI +
		`" xmlns:cwmp="` + NamespaceCWMP + `">` + "\n")
	if id != "" {
		sb.WriteString("<soapenv:Header>\n<cwmp:ID soapenv:mustUnderstand=\"1\">")
		sb.WriteString(escape(id))
		sb.WriteString("</cwmp:ID>\n</soapenv:Header>\n")
	}
	sb.WriteString("<soapenv:Body>\n")
	sb.WriteString(body)
	sb.WriteString("</soapenv:Body>\n</soapenv:Envelope>\n")
	return []byte(sb.String())
}

// EmptyEnvelope is the acknowledgement for methods the server has
// nothing to say to. Always HTTP 200, never an error status.
func EmptyEnvelope(id string) []byte {
	return envelope(id, "")
}

// FaultEnvelope builds the SOAP Fault reply carrying a CWMP fault
// detail. Sent with HTTP 200 per protocol convention.
func FaultEnvelope(id string, code int, reason string) []byte {
	var sb strings.Builder
	sb.WriteString("<soapenv:Fault>\n")
	sb.WriteString("<faultcode>Client</faultcode>\n")
	sb.WriteString("<faultstring>CWMP fault</faultstring>\n")
	sb.WriteString("<detail>\n<cwmp:Fault>\n")
	fmt.Fprintf(&sb, "<FaultCode>%d</FaultCode>\n", code)
	fmt.Fprintf(&sb, "<FaultString>%s</FaultString>\n", escape(reason))
	sb.WriteString("</cwmp:Fault>\n</detail>\n")
	sb.WriteString("</soapenv:Fault>\n")
	return envelope(id, sb.String())
}

// escape renders s safe for element text and attribute values.
func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
