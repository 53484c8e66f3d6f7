package acs

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/cwmp"
	"github.com/nanoncore/nano-access/model"
)

// sessionCookie carries the device key across the POSTs of one CWMP
// session so responses without a command key can be tied back to the
// device that is mid-session.
const sessionCookie = "acs_session"

// handleCWMP is the single CWMP endpoint. Devices drive the session:
// every request is a POST, an empty POST means the device is done
// sending and polls for more work.
func (s *Server) handleCWMP(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		s.logger.Warn("reading CWMP request", zap.Error(err))
		return s.sendXML(c, cwmp.FaultEnvelope("", cwmp.FaultInternalError, "unreadable request body"))
	}
	if len(body) == 0 {
		return s.noContent(c)
	}

	msg, err := cwmp.Parse(body)
	if err != nil {
		s.logger.Warn("malformed CWMP request",
			zap.String("remote", c.RealIP()),
			zap.Error(err))
		return s.sendXML(c, cwmp.FaultEnvelope("", cwmp.FaultInvalidArguments, err.Error()))
	}

	switch m := msg.(type) {
	case *cwmp.Inform:
		return s.handleInform(c, m)
	case *cwmp.TransferComplete:
		return s.handleTransferComplete(c, m)
	case *cwmp.GetParameterValuesResponse:
		if deviceKey, ok := s.session(c); ok {
			s.devices.MergeParameters(deviceKey, m.Parameters)
		}
		return s.settleTask(c, m, model.TaskCompleted, "")
	case *cwmp.SetParameterValuesResponse:
		state, lastError := statusOutcome(m.Status)
		return s.settleTask(c, m, state, lastError)
	case *cwmp.DownloadResponse:
		state, lastError := statusOutcome(m.Status)
		return s.settleTask(c, m, state, lastError)
	case *cwmp.RebootResponse:
		return s.settleTask(c, m, model.TaskCompleted, "")
	case *cwmp.FactoryResetResponse:
		return s.settleTask(c, m, model.TaskCompleted, "")
	case *cwmp.GetRPCMethodsResponse:
		s.logger.Debug("device RPC methods", zap.Strings("methods", m.Methods))
		return s.noContent(c)
	case *cwmp.Unknown:
		s.logger.Debug("unrecognized CWMP method",
			zap.String("method", m.Method),
			zap.String("remote", c.RealIP()))
		return s.sendXML(c, cwmp.EmptyEnvelope(m.SessionID()))
	default:
		return s.noContent(c)
	}
}

func (s *Server) handleInform(c echo.Context, inform *cwmp.Inform) error {
	identity := inform.Identity()
	if !identity.Valid() {
		s.logger.Warn("Inform without a usable identity",
			zap.String("oui", identity.OUI),
			zap.String("serial", identity.SerialNumber),
			zap.String("remote", c.RealIP()))
		return s.sendXML(c, cwmp.FaultEnvelope(inform.ID, cwmp.FaultInvalidArguments, "device identity is incomplete"))
	}

	snapshot := model.CPEDevice{
		Identity:             identity,
		Manufacturer:         inform.Manufacturer,
		SoftwareVersion:      inform.ParameterSuffix(".DeviceInfo.SoftwareVersion"),
		HardwareVersion:      inform.ParameterSuffix(".DeviceInfo.HardwareVersion"),
		ConnectionRequestURL: inform.ParameterSuffix(".ManagementServer.ConnectionRequestURL"),
		ExternalIP:           inform.ParameterSuffix(".ExternalIPAddress"),
		LastInform:           time.Now(),
		Parameters:           inform.Parameters,
	}
	if snapshot.ExternalIP == "" {
		snapshot.ExternalIP = c.RealIP()
	}

	device := s.devices.Upsert(snapshot)
	s.setSession(c, device.Identity.Key())

	decision := s.tasks.NextForDispatch(device.Identity.Key(), inform)
	if decision.Task != nil {
		s.logger.Info("dispatching task",
			zap.String("device", device.Identity.Key()),
			zap.String("task", decision.Task.ID),
			zap.String("kind", string(decision.Task.Kind)))
	} else {
		s.logger.Debug("inform",
			zap.String("device", device.Identity.Key()),
			zap.Strings("events", inform.Events))
	}
	return s.sendXML(c, decision.Reply.Envelope())
}

func (s *Server) handleTransferComplete(c echo.Context, tc *cwmp.TransferComplete) error {
	state := model.TaskCompleted
	lastError := ""
	if tc.Failed() {
		state = model.TaskFailed
		lastError = fmt.Sprintf("%d %s", tc.FaultCode, tc.FaultString)
	}

	task, ok := s.tasks.CloseByCommandKey(tc.CommandKey, state, lastError)
	if !ok {
		if deviceKey, known := s.session(c); known {
			task, ok = s.tasks.CloseInProgress(deviceKey, state, lastError)
		}
	}
	if ok {
		s.logger.Info("transfer finished",
			zap.String("task", task.ID),
			zap.String("command_key", tc.CommandKey),
			zap.String("state", string(task.State)))
	} else {
		s.logger.Warn("TransferComplete for unknown command key",
			zap.String("command_key", tc.CommandKey))
	}
	return s.sendXML(c, (&cwmp.TransferCompleteResponse{ID: tc.ID}).Envelope())
}

// settleTask closes the session device's in_progress task and ends the
// session. Response RPCs carry no command key, so the session cookie
// is the only way back to the device.
func (s *Server) settleTask(c echo.Context, msg cwmp.Message, state model.TaskState, lastError string) error {
	deviceKey, ok := s.session(c)
	if !ok {
		s.logger.Warn("response outside a known session",
			zap.String("method", msg.RPCName()),
			zap.String("remote", c.RealIP()))
		return s.noContent(c)
	}

	task, closed := s.tasks.CloseInProgress(deviceKey, state, lastError)
	if closed {
		s.logger.Info("task settled",
			zap.String("device", deviceKey),
			zap.String("task", task.ID),
			zap.String("state", string(task.State)))
	} else {
		s.logger.Warn("response with no task in progress",
			zap.String("device", deviceKey),
			zap.String("method", msg.RPCName()))
	}
	return s.noContent(c)
}

func statusOutcome(status int) (model.TaskState, string) {
	if status == 0 {
		return model.TaskCompleted, ""
	}
	return model.TaskFailed, fmt.Sprintf("status %d", status)
}

// sendXML writes a CWMP envelope. The envelope bytes already carry the
// XML declaration, so this stays on Blob rather than XMLBlob.
func (s *Server) sendXML(c echo.Context, envelope []byte) error {
	c.Response().Header().Set("Connection", "keep-alive")
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, envelope)
}

// noContent ends the session the CWMP way: 204 with the connection
// held open.
func (s *Server) noContent(c echo.Context) error {
	c.Response().Header().Set("Connection", "keep-alive")
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) setSession(c echo.Context, deviceKey string) {
	c.SetCookie(&http.Cookie{
		Name:  sessionCookie,
		Value: url.QueryEscape(deviceKey),
		Path:  "/",
	})
}

func (s *Server) session(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	deviceKey, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", false
	}
	return deviceKey, true
}
