package cwmp

import (
	"encoding/xml"
	"fmt"

	"github.com/nanoncore/nano-access/types"
)

// soapDocument is the shape-agnostic first decode: the session ID and
// the body's element children in document order. Struct tags match on
// local names only, so any namespace prefix the CPE chose works.
type soapDocument struct {
	XMLName xml.Name `xml:"Envelope"`
	Header  struct {
		ID string `xml:"ID"`
	} `xml:"Header"`
	Body struct {
		Children []bodyChild `xml:",any"`
	} `xml:"Body"`
}

type bodyChild struct {
	XMLName xml.Name
}

type parameterValue struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

// Parse decodes one CPE request body. The RPC method is the local name
// of the first Body child element. Methods outside the recognized set
// come back as *Unknown, not as an error; only input that fails to
// decode is an error.
func Parse(data []byte) (Message, error) {
	var doc soapDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &types.ProtocolError{Reason: "request is not a SOAP envelope", Err: err}
	}
	if len(doc.Body.Children) == 0 {
		return nil, &types.ProtocolError{Reason: "SOAP body carries no RPC element"}
	}

	id := doc.Header.ID
	method := doc.Body.Children[0].XMLName.Local

	switch method {
	case "Inform":
		return parseInform(id, data)
	case "TransferComplete":
		return parseTransferComplete(id, data)
	case "GetParameterValuesResponse":
		return parseGetParameterValuesResponse(id, data)
	case "SetParameterValuesResponse":
		return parseSetParameterValuesResponse(id, data)
	case "DownloadResponse":
		return parseDownloadResponse(id, data)
	case "RebootResponse":
		return &RebootResponse{ID: id}, nil
	case "FactoryResetResponse":
		return &FactoryResetResponse{ID: id}, nil
	case "GetRPCMethodsResponse":
		return parseGetRPCMethodsResponse(id, data)
	default:
		return &Unknown{ID: id, Method: method}, nil
	}
}

func malformed(method string, err error) error {
	return &types.ProtocolError{Reason: fmt.Sprintf("malformed %s", method), Err: err}
}

type informDocument struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Inform struct {
			DeviceID struct {
				Manufacturer string `xml:"Manufacturer"`
				OUI          string `xml:"OUI"`
				ProductClass string `xml:"ProductClass"`
				SerialNumber string `xml:"SerialNumber"`
			} `xml:"DeviceId"`
			Events []struct {
				EventCode  string `xml:"EventCode"`
				CommandKey string `xml:"CommandKey"`
			} `xml:"Event>EventStruct"`
			MaxEnvelopes int              `xml:"MaxEnvelopes"`
			CurrentTime  string           `xml:"CurrentTime"`
			RetryCount   int              `xml:"RetryCount"`
			Parameters   []parameterValue `xml:"ParameterList>ParameterValueStruct"`
		} `xml:"Inform"`
	} `xml:"Body"`
}

func parseInform(id string, data []byte) (*Inform, error) {
	var doc informDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("Inform", err)
	}
	payload := doc.Body.Inform

	inform := &Inform{
		ID:           id,
		Manufacturer: payload.DeviceID.Manufacturer,
		OUI:          payload.DeviceID.OUI,
		ProductClass: payload.DeviceID.ProductClass,
		SerialNumber: payload.DeviceID.SerialNumber,
		MaxEnvelopes: payload.MaxEnvelopes,
		CurrentTime:  payload.CurrentTime,
		RetryCount:   payload.RetryCount,
		Parameters:   make(map[string]string, len(payload.Parameters)),
	}
	for _, event := range payload.Events {
		if event.EventCode != "" {
			inform.Events = append(inform.Events, event.EventCode)
		}
	}
	for _, param := range payload.Parameters {
		if param.Name != "" {
			inform.Parameters[param.Name] = param.Value
		}
	}
	return inform, nil
}

type transferCompleteDocument struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		TransferComplete struct {
			CommandKey  string `xml:"CommandKey"`
			FaultStruct struct {
				FaultCode   int    `xml:"FaultCode"`
				FaultString string `xml:"FaultString"`
			} `xml:"FaultStruct"`
			StartTime    string `xml:"StartTime"`
			CompleteTime string `xml:"CompleteTime"`
		} `xml:"TransferComplete"`
	} `xml:"Body"`
}

func parseTransferComplete(id string, data []byte) (*TransferComplete, error) {
	var doc transferCompleteDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("TransferComplete", err)
	}
	payload := doc.Body.TransferComplete
	return &TransferComplete{
		ID:           id,
		CommandKey:   payload.CommandKey,
		FaultCode:    payload.FaultStruct.FaultCode,
		FaultString:  payload.FaultStruct.FaultString,
		StartTime:    payload.StartTime,
		CompleteTime: payload.CompleteTime,
	}, nil
}

type getParameterValuesResponseDocument struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Parameters []parameterValue `xml:"ParameterList>ParameterValueStruct"`
		} `xml:"GetParameterValuesResponse"`
	} `xml:"Body"`
}

func parseGetParameterValuesResponse(id string, data []byte) (*GetParameterValuesResponse, error) {
	var doc getParameterValuesResponseDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("GetParameterValuesResponse", err)
	}
	response := &GetParameterValuesResponse{
		ID:         id,
		Parameters: make(map[string]string, len(doc.Body.Response.Parameters)),
	}
	for _, param := range doc.Body.Response.Parameters {
		if param.Name != "" {
			response.Parameters[param.Name] = param.Value
		}
	}
	return response, nil
}

type setParameterValuesResponseDocument struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Status int `xml:"Status"`
		} `xml:"SetParameterValuesResponse"`
	} `xml:"Body"`
}

func parseSetParameterValuesResponse(id string, data []byte) (*SetParameterValuesResponse, error) {
	var doc setParameterValuesResponseDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("SetParameterValuesResponse", err)
	}
	return &SetParameterValuesResponse{ID: id, Status: doc.Body.Response.Status}, nil
}

type downloadResponseDocument struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Status       int    `xml:"Status"`
			StartTime    string `xml:"StartTime"`
			CompleteTime string `xml:"CompleteTime"`
		} `xml:"DownloadResponse"`
	} `xml:"Body"`
}

func parseDownloadResponse(id string, data []byte) (*DownloadResponse, error) {
	var doc downloadResponseDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("DownloadResponse", err)
	}
	payload := doc.Body.Response
	return &DownloadResponse{
		ID:           id,
		Status:       payload.Status,
		StartTime:    payload.StartTime,
		CompleteTime: payload.CompleteTime,
	}, nil
}

type getRPCMethodsResponseDocument struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Methods []string `xml:"MethodList>string"`
		} `xml:"GetRPCMethodsResponse"`
	} `xml:"Body"`
}

func parseGetRPCMethodsResponse(id string, data []byte) (*GetRPCMethodsResponse, error) {
	var doc getRPCMethodsResponseDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("GetRPCMethodsResponse", err)
	}
	return &GetRPCMethodsResponse{ID: id, Methods: doc.Body.Response.Methods}, nil
}
