package snmp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/types"
	"github.com/nanoncore/nano-access/vendors/common"
)

// Client implements types.SNMPExecutor against one device agent.
// SNMP here is read-only plumbing for monitoring; configuration always
// goes through the CLI drivers.
type Client struct {
	config *types.EquipmentConfig
	logger *zap.Logger
	snmp   *gosnmp.GoSNMP
}

// NewClient builds the client and opens the UDP socket. The SNMP version
// comes from metadata (default v2c); the community from the config with
// a "public" fallback.
func NewClient(config *types.EquipmentConfig, logger *zap.Logger) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	port := config.SNMPPort
	if port <= 0 || port > 65535 {
		port = 161
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	version := gosnmp.Version2c
	switch common.MetadataStringDefault(config.Metadata, "2c", "snmp_version", "snmpVersion") {
	case "1":
		version = gosnmp.Version1
	case "2c":
		version = gosnmp.Version2c
	case "3":
		version = gosnmp.Version3
	}

	community := config.SNMPCommunity
	if community == "" {
		community = common.MetadataStringDefault(config.Metadata, "public", "snmp_community", "community")
	}

	client := &gosnmp.GoSNMP{
		Target:    config.Address,
		Port:      uint16(port), //nolint:gosec // range-checked above
		Community: community,
		Version:   version,
		Timeout:   timeout,
		Retries:   2,
	}

	if version == gosnmp.Version3 {
		client.SecurityModel = gosnmp.UserSecurityModel
		client.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 config.Username,
			AuthenticationProtocol:   gosnmp.SHA,
			AuthenticationPassphrase: config.Password,
			PrivacyProtocol:          gosnmp.AES,
			PrivacyPassphrase:        config.Password,
		}
		client.MsgFlags = gosnmp.AuthPriv
	}

	if err := client.Connect(); err != nil {
		return nil, &types.ConnectionError{
			Target: fmt.Sprintf("%s:%d", config.Address, port),
			Err:    err,
		}
	}

	return &Client{
		config: config,
		logger: logger.With(zap.String("equipment", config.Name)),
		snmp:   client,
	}, nil
}

func (c *Client) target() string {
	return fmt.Sprintf("%s:%d", c.snmp.Target, c.snmp.Port)
}

// GetSNMP retrieves the given OIDs in one request. Result keys are the
// OIDs as the agent reports them (leading dot included).
func (c *Client) GetSNMP(ctx context.Context, oids []string) (map[string]interface{}, error) {
	if c.snmp == nil {
		return nil, &types.ConnectionError{Target: c.config.Address, Err: fmt.Errorf("client closed")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &types.ConnectionError{Target: c.target(), Err: err}
	}

	result, err := c.snmp.Get(oids)
	if err != nil {
		return nil, c.classify("GET", err)
	}

	values := make(map[string]interface{}, len(result.Variables))
	for _, pdu := range result.Variables {
		values[pdu.Name] = decodePDU(pdu)
	}
	return values, nil
}

// WalkSNMP walks the subtree under oid, keyed by the index suffix below
// the base (for ONU tables that is "ponPort.onuID").
func (c *Client) WalkSNMP(ctx context.Context, oid string) (map[string]interface{}, error) {
	if c.snmp == nil {
		return nil, &types.ConnectionError{Target: c.config.Address, Err: fmt.Errorf("client closed")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &types.ConnectionError{Target: c.target(), Err: err}
	}

	values := make(map[string]interface{})
	err := c.snmp.Walk(oid, func(pdu gosnmp.SnmpPDU) error {
		values[indexSuffix(oid, pdu.Name)] = decodePDU(pdu)
		return nil
	})
	if err != nil {
		return nil, c.classify("WALK "+oid, err)
	}

	c.logger.Debug("snmp walk done", zap.String("oid", oid), zap.Int("rows", len(values)))
	return values, nil
}

// TestConnection probes the agent with a sysUpTime GET. Any failure
// reports false instead of an error.
func (c *Client) TestConnection(ctx context.Context) bool {
	values, err := c.GetSNMP(ctx, []string{"1.3.6.1.2.1.1.3.0"})
	return err == nil && len(values) > 0
}

// Close releases the UDP socket. Safe to call more than once.
func (c *Client) Close() error {
	if c.snmp == nil || c.snmp.Conn == nil {
		return nil
	}
	err := c.snmp.Conn.Close()
	c.snmp = nil
	return err
}

func (c *Client) classify(op string, err error) error {
	if strings.Contains(err.Error(), "timeout") {
		return &types.TimeoutError{
			Op:      fmt.Sprintf("SNMP %s on %s", op, c.target()),
			Timeout: c.snmp.Timeout,
			Err:     err,
		}
	}
	return &types.CommandError{
		Command: "SNMP " + op,
		Err:     err,
	}
}

// decodePDU converts a PDU value into the plain Go type the vendor
// adapters consume.
func decodePDU(pdu gosnmp.SnmpPDU) interface{} {
	switch pdu.Type {
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			return b
		}
		return pdu.Value
	case gosnmp.Integer:
		return int64(pdu.Value.(int))
	case gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks:
		return uint64(pdu.Value.(uint))
	case gosnmp.Counter64:
		return pdu.Value.(uint64)
	default:
		return pdu.Value
	}
}

// indexSuffix strips the base OID (leading dot or not) plus the joining
// dot from a full PDU name.
func indexSuffix(base, name string) string {
	b := strings.TrimPrefix(base, ".")
	n := strings.TrimPrefix(name, ".")
	if strings.HasPrefix(n, b+".") {
		return n[len(b)+1:]
	}
	return n
}

var _ types.SNMPExecutor = (*Client)(nil)
