package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/Jon-Bright/clkctl/clk"
	"github.com/platinasystems/log"
)

type Server struct {
	ck *clk.Clk
	l  net.Listener
}

func NewServer(port int, ck *clk.Clk) (*Server, error) {

	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	log.Printf("Listening on port %d", port)
	return &Server{ck, l}, nil
}

func parseClock(parms string) (string, clk.ClockID, error) {
	t := strings.SplitN(parms, " ", 2)
	id, ok := clk.ByName(t[0])
	if !ok {
		return "", 0, fmt.Errorf("unknown clock '%s'", t[0])
	}
	if len(t) == 1 {
		return "", id, nil
	}
	return t[1], id, nil
}

func parseKHz(parms string) (string, uint32, error) {
	t := strings.SplitN(parms, " ", 2)
	kHz, err := strconv.ParseUint(t[0], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("bad frequency '%s': %v", t[0], err)
	}
	if len(t) == 1 {
		return "", uint32(kHz), nil
	}
	return t[1], uint32(kHz), nil
}

func parseRegOp(parms string) (clk.RegOp, uint32, uint32, error) {
	t := strings.Split(parms, " ")
	if len(t) != 3 {
		return 0, 0, 0, fmt.Errorf("want OP OFFSET VALUE, got '%s'", parms)
	}
	var op clk.RegOp
	switch strings.ToUpper(t[0]) {
	case "WRITE":
		op = clk.RegWrite
	case "SET":
		op = clk.RegSet
	case "CLEAR":
		op = clk.RegClear
	default:
		return 0, 0, 0, fmt.Errorf("unknown register op '%s'", t[0])
	}
	offset, err := strconv.ParseUint(strings.TrimPrefix(t[1], "0x"), 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad offset '%s': %v", t[1], err)
	}
	value, err := strconv.ParseUint(strings.TrimPrefix(t[2], "0x"), 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad value '%s': %v", t[2], err)
	}
	return op, uint32(offset), uint32(value), nil
}

// handleCommand returns the reply for one command line, without trailing
// newline. An empty reply means plain OK.
func (s *Server) handleCommand(cmd, parms string) (string, error) {
	switch cmd {
	case "RATE":
		_, id, err := parseClock(parms)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", s.ck.Rate(id)), nil
	case "ENABLE":
		_, id, err := parseClock(parms)
		if err != nil {
			return "", err
		}
		if !clk.HasGate(id) {
			return "", fmt.Errorf("clock %s has no gate", id.Name())
		}
		s.ck.Enable(id)
		return "", nil
	case "DISABLE":
		_, id, err := parseClock(parms)
		if err != nil {
			return "", err
		}
		if !clk.HasGate(id) {
			return "", fmt.Errorf("clock %s has no gate", id.Name())
		}
		s.ck.Disable(id)
		return "", nil
	case "ENABLED":
		_, id, err := parseClock(parms)
		if err != nil {
			return "", err
		}
		if s.ck.IsEnabled(id) {
			return "1", nil
		}
		return "0", nil
	case "PARENT":
		_, id, err := parseClock(parms)
		if err != nil {
			return "", err
		}
		return s.ck.ParentName(id), nil
	case "OPP_SET":
		_, kHz, err := parseKHz(parms)
		if err != nil {
			return "", err
		}
		if err := s.ck.SetOppKHz(kHz); err != nil {
			return "", err
		}
		return "", nil
	case "OPP_ROUND":
		_, kHz, err := parseKHz(parms)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", s.ck.RoundOppKHz(kHz)), nil
	case "OPP":
		return fmt.Sprintf("%d", s.ck.CurrentOppKHz()), nil
	case "REG":
		op, offset, value, err := parseRegOp(parms)
		if err != nil {
			return "", err
		}
		return "", s.ck.RawRegAccess(op, offset, value)
	case "SETTINGS":
		if !s.ck.SettingsValid() {
			return "", fmt.Errorf("no valid operating point settings")
		}
		return hex.EncodeToString(s.ck.SaveOppSettings()), nil
	case "SUSPEND":
		s.ck.PMCallback(clk.PMSuspend)
		return "", nil
	case "RESUME":
		s.ck.PMCallback(clk.PMResume)
		return "", nil
	}
	return "", fmt.Errorf("unknown command: %s", cmd)
}

func (s *Server) handleConnection(c net.Conn) {
	log.Printf("Handling connection from %v", c.RemoteAddr())
	defer c.Close()
	r := bufio.NewReader(c)
	w := bufio.NewWriter(c)
	for {
		l, err := r.ReadString('\n')
		if err == io.EOF {
			log.Printf("EOF for connection %v", c.RemoteAddr())
			return
		}
		if err != nil {
			log.Printf("Error reading string for connection %v: %v", c.RemoteAddr(), err)
			return
		}
		l = strings.TrimSpace(l)
		log.Printf("Got line '%s'", l)
		t := strings.SplitN(l, " ", 2)
		cmd := strings.ToUpper(t[0])
		parms := ""
		if len(t) > 1 {
			parms = t[1]
		}
		if cmd == "QUIT" {
			return
		}
		reply, err := s.handleCommand(cmd, parms)
		if err != nil {
			es := fmt.Sprintf("Error handling %s: %v", cmd, err)
			log.Print(es)
			w.WriteString("ERR: " + es + "\n")
			err = w.Flush()
			if err != nil {
				log.Printf("error writing error reply: %v", err)
			}
			return
		}
		if reply == "" {
			reply = "OK"
		}
		w.WriteString(reply + "\n")
		err = w.Flush()
		if err != nil {
			log.Printf("error writing reply: %v", err)
			return
		}
	}
}

func (s *Server) handleConnections() {
	for {
		conn, err := s.l.Accept()
		if err != nil {
			log.Printf("Error accepting connection: %v", err)
			continue
		}
		go s.handleConnection(conn)
	}
}
