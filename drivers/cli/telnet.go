package cli

import (
	"bufio"
	"net"
)

// Telnet protocol bytes (RFC 854). The driver negotiates nothing: every
// option request is refused, leaving both sides in plain line mode.
const (
	telnetSE   = 240
	telnetSB   = 250
	telnetWILL = 251
	telnetWONT = 252
	telnetDO   = 253
	telnetDONT = 254
	telnetIAC  = 255
)

// telnetConn filters Telnet command sequences out of the byte stream so
// the expect layer only ever sees terminal text.
type telnetConn struct {
	conn net.Conn
	r    *bufio.Reader
}

func newTelnetConn(conn net.Conn) *telnetConn {
	return &telnetConn{
		conn: conn,
		r:    bufio.NewReader(conn),
	}
}

// Read fills p with stream bytes, consuming and answering IAC sequences
// in-line. Returns after at least one data byte or an error.
func (t *telnetConn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := 0
	for n == 0 || t.r.Buffered() > 0 {
		if n == len(p) {
			break
		}
		b, err := t.r.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}

		if b != telnetIAC {
			p[n] = b
			n++
			continue
		}

		cmd, err := t.r.ReadByte()
		if err != nil {
			return n, err
		}
		switch cmd {
		case telnetIAC:
			// Escaped 0xFF data byte
			p[n] = telnetIAC
			n++
		case telnetDO, telnetDONT, telnetWILL, telnetWONT:
			opt, err := t.r.ReadByte()
			if err != nil {
				return n, err
			}
			if err := t.refuse(cmd, opt); err != nil {
				return n, err
			}
		case telnetSB:
			// Skip subnegotiation payload up to IAC SE
			if err := t.skipSubnegotiation(); err != nil {
				return n, err
			}
		default:
			// Two-byte commands (NOP, GA, ...) carry no payload
		}
	}
	return n, nil
}

// refuse answers an option request with the matching refusal:
// DO -> WONT, WILL -> DONT. DONT/WONT need no answer.
func (t *telnetConn) refuse(cmd, opt byte) error {
	var reply byte
	switch cmd {
	case telnetDO:
		reply = telnetWONT
	case telnetWILL:
		reply = telnetDONT
	default:
		return nil
	}
	_, err := t.conn.Write([]byte{telnetIAC, reply, opt})
	return err
}

func (t *telnetConn) skipSubnegotiation() error {
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			return err
		}
		if b != telnetIAC {
			continue
		}
		next, err := t.r.ReadByte()
		if err != nil {
			return err
		}
		if next == telnetSE {
			return nil
		}
	}
}

// Write sends p with 0xFF data bytes doubled per the protocol.
func (t *telnetConn) Write(p []byte) (int, error) {
	escaped := make([]byte, 0, len(p))
	for _, b := range p {
		escaped = append(escaped, b)
		if b == telnetIAC {
			escaped = append(escaped, telnetIAC)
		}
	}
	if _, err := t.conn.Write(escaped); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (t *telnetConn) Close() error {
	return t.conn.Close()
}
