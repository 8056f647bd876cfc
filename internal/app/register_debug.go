// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	adis16460 "github.com/tdenningTRI/ADIS16460"
)

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn *websocket.Conn
	dev  *adis16460.Dev
}

// RegisterResponse is the wire format for register debug replies.
type RegisterResponse struct {
	Type        string                   `json:"type"` // "register_data", "register_map", "status", "error"
	Address     string                   `json:"addr,omitempty"`
	Value       string                   `json:"value,omitempty"`
	Registers   map[string]string        `json:"registers,omitempty"` // for bulk read
	Timestamp   string                   `json:"timestamp,omitempty"`
	Message     string                   `json:"message,omitempty"`
	Status      string                   `json:"status,omitempty"`
	RegisterMap []adis16460.RegisterInfo `json:"register_map,omitempty"`
}

// RegisterConfigFile represents the JSON structure for exported register configuration
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// NewRegisterDebugHandler returns the WebSocket handler for register debugging.
func NewRegisterDebugHandler(dev *adis16460.Dev) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("register_debug: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		session := &RegisterDebugSession{Conn: conn, dev: dev}

		// Send register map on connection
		if err := session.sendRegisterMap(); err != nil {
			log.Printf("register_debug: error sending register map: %v", err)
			return
		}

		// Message loop
		for {
			var rawMsg map[string]interface{}
			err := conn.ReadJSON(&rawMsg)
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("register_debug: websocket error: %v", err)
				}
				break
			}

			action, ok := rawMsg["action"].(string)
			if !ok {
				session.sendError("missing or invalid action field")
				continue
			}

			// Route based on action
			switch action {
			case "get_map":
				session.sendRegisterMap()
			case "read":
				session.handleRead(rawMsg)
			case "read_all":
				session.handleReadAll()
			case "write":
				session.handleWrite(rawMsg)
			case "prod_id":
				session.handleProdID()
			case "export_config":
				session.handleExportConfig()
			default:
				session.sendError(fmt.Sprintf("unknown action: %s", action))
			}
		}
	}
}

func (s *RegisterDebugSession) handleRead(rawMsg map[string]interface{}) {
	addr, _ := rawMsg["addr"].(string)
	if addr == "" {
		s.sendError("missing addr field")
		return
	}

	// Parse hex address
	var addrByte byte
	if _, err := fmt.Sscanf(addr, "0x%X", &addrByte); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}

	value, err := s.dev.ReadRegister(addrByte)
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}

	// Send response
	resp := RegisterResponse{
		Type:      "register_data",
		Address:   addr,
		Value:     fmt.Sprintf("0x%04X", value),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleReadAll() {
	regMap := make(map[string]string)
	for _, info := range adis16460.RegisterMap() {
		var addrByte byte
		if _, err := fmt.Sscanf(info.Address, "0x%X", &addrByte); err != nil {
			s.sendError(fmt.Sprintf("bad register map address: %s", info.Address))
			return
		}
		value, err := s.dev.ReadRegister(addrByte)
		if err != nil {
			s.sendError(fmt.Sprintf("read all error at %s: %v", info.Address, err))
			return
		}
		regMap[info.Address] = fmt.Sprintf("0x%04X", value)
	}

	// Send response
	resp := RegisterResponse{
		Type:      "register_data",
		Registers: regMap,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleWrite(rawMsg map[string]interface{}) {
	addr, _ := rawMsg["addr"].(string)
	valueStr, _ := rawMsg["value"].(string)

	if addr == "" || valueStr == "" {
		s.sendError("missing addr or value field")
		return
	}

	// Parse hex address and 16-bit value
	var addrByte byte
	var value uint16
	if _, err := fmt.Sscanf(addr, "0x%X", &addrByte); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}
	if _, err := fmt.Sscanf(valueStr, "0x%X", &value); err != nil {
		s.sendError(fmt.Sprintf("invalid value format: %s", valueStr))
		return
	}

	if !isRegisterWritable(addrByte) {
		s.sendError(fmt.Sprintf("register 0x%02X is not writable", addrByte))
		return
	}

	// Registers are 16 bits wide but written one byte per frame, low
	// byte at the base address and high byte at the next one.
	if err := s.dev.WriteRegister(addrByte, byte(value)); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}
	if err := s.dev.WriteRegister(addrByte+1, byte(value>>8)); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}

	// Send confirmation
	resp := RegisterResponse{
		Type:      "register_data",
		Address:   addr,
		Value:     valueStr,
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleProdID() {
	id, err := s.dev.ProdID()
	if err != nil {
		s.sendError(fmt.Sprintf("prod_id error: %v", err))
		return
	}

	status := "ok"
	if id != adis16460.ProductID {
		status = "mismatch"
	}
	resp := RegisterResponse{
		Type:      "status",
		Status:    status,
		Value:     fmt.Sprintf("0x%04X", id),
		Message:   fmt.Sprintf("expected 0x%04X", adis16460.ProductID),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleExportConfig() {
	regMap := make(map[string]string)
	for _, info := range adis16460.RegisterMap() {
		var addrByte byte
		if _, err := fmt.Sscanf(info.Address, "0x%X", &addrByte); err != nil {
			s.sendError(fmt.Sprintf("bad register map address: %s", info.Address))
			return
		}
		value, err := s.dev.ReadRegister(addrByte)
		if err != nil {
			s.sendError(fmt.Sprintf("export error at %s: %v", info.Address, err))
			return
		}
		regMap[info.Address] = fmt.Sprintf("0x%04X", value)
	}

	// Create config file structure
	configFile := RegisterConfigFile{
		Version:   1,
		Timestamp: time.Now().Format(time.RFC3339),
		Registers: regMap,
	}

	// Send as download
	configJSON, _ := json.Marshal(configFile)
	rawResp := map[string]interface{}{
		"type":     "export_config",
		"message":  "config exported",
		"config":   string(configJSON),
		"filename": fmt.Sprintf("adis16460_%s_registers.json", time.Now().Format("20060102_150405")),
	}
	s.Conn.WriteJSON(rawResp)
}

func (s *RegisterDebugSession) sendRegisterMap() error {
	resp := RegisterResponse{
		Type:        "register_map",
		RegisterMap: adis16460.RegisterMap(),
	}
	return s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) sendError(message string) {
	resp := RegisterResponse{
		Type:    "error",
		Message: message,
	}
	s.Conn.WriteJSON(resp)
}

// NewIMUDataHandler serves the latest sample via REST API.
func NewIMUDataHandler(dev *adis16460.Dev) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		p := imuPayload{
			Sample: dev.Latest(),
			Time:   dev.LastSampleTime().Format(time.RFC3339Nano),
		}
		json.NewEncoder(w).Encode(p)
	}
}

// isRegisterWritable checks the register map for write access at addr.
func isRegisterWritable(addr byte) bool {
	target := fmt.Sprintf("0x%02X", addr)
	for _, info := range adis16460.RegisterMap() {
		if info.Address == target {
			return info.Access == "RW"
		}
	}
	return false
}
