package transport

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
)

// DialSOCKS5 performs method negotiation (no-auth only, per spec §4.7)
// followed by a CONNECT request addressed by whichever of
// IPv4/IPv6/domain-name fits target, over an already-established TCP
// connection to the proxy.
func DialSOCKS5(conn net.Conn, target string, port uint16) error {
	if _, err := conn.Write([]byte{0x05, 0x01, 0x00}); err != nil {
		return fmt.Errorf("transport: socks5 method negotiation: %w", err)
	}
	reply := make([]byte, 2)
	if _, err := io.ReadFull(conn, reply); err != nil {
		return fmt.Errorf("transport: socks5 method negotiation: %w", err)
	}
	if reply[0] != 0x05 || reply[1] != 0x00 {
		return errors.New("transport: socks5 proxy rejected no-auth method")
	}

	req, err := socks5ConnectRequest(target, port)
	if err != nil {
		return err
	}
	if _, err := conn.Write(req); err != nil {
		return fmt.Errorf("transport: socks5 connect request: %w", err)
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(conn, header); err != nil {
		return fmt.Errorf("transport: socks5 connect reply: %w", err)
	}
	if header[1] != 0x00 {
		return fmt.Errorf("transport: socks5 connect failed with reply code %d", header[1])
	}

	// Skip the bound address, whose size depends on the address-type
	// byte (header[3]): IPv4 = 4, domain = 1 length byte + N, IPv6 = 16,
	// plus 2 bytes of port in every case.
	var addrLen int
	switch header[3] {
	case 0x01:
		addrLen = 4
	case 0x03:
		lenByte := make([]byte, 1)
		if _, err := io.ReadFull(conn, lenByte); err != nil {
			return fmt.Errorf("transport: socks5 connect reply: %w", err)
		}
		addrLen = int(lenByte[0])
	case 0x04:
		addrLen = 16
	default:
		return errors.New("transport: socks5 connect reply has unknown address type")
	}
	if _, err := io.ReadFull(conn, make([]byte, addrLen+2)); err != nil {
		return fmt.Errorf("transport: socks5 connect reply: %w", err)
	}
	return nil
}

func socks5ConnectRequest(target string, port uint16) ([]byte, error) {
	req := []byte{0x05, 0x01, 0x00}
	if addr, err := netip.ParseAddr(target); err == nil {
		if addr.Is4() {
			req = append(req, 0x01)
			b := addr.As4()
			req = append(req, b[:]...)
		} else {
			req = append(req, 0x04)
			b := addr.As16()
			req = append(req, b[:]...)
		}
	} else {
		if len(target) > 255 {
			return nil, errors.New("transport: socks5 domain name too long")
		}
		req = append(req, 0x03, byte(len(target)))
		req = append(req, target...)
	}
	req = append(req, byte(port>>8), byte(port))
	return req, nil
}

// DialSOCKS4 performs a single-packet CONNECT, appending the SOCKS4A
// hostname trailer when target is not an IPv4 literal (spec §4.7).
func DialSOCKS4(conn net.Conn, target string, port uint16) error {
	req := []byte{0x04, 0x01, byte(port >> 8), byte(port)}

	addr, err := netip.ParseAddr(target)
	isIPv4Literal := err == nil && addr.Is4()

	if isIPv4Literal {
		b := addr.As4()
		req = append(req, b[:]...)
		req = append(req, 0x00) // empty user-id
	} else {
		// SOCKS4A: destination IP is an invalid placeholder (0.0.0.x with
		// x != 0) signaling the proxy to resolve the trailing hostname.
		req = append(req, 0x00, 0x00, 0x00, 0x01)
		req = append(req, 0x00) // empty user-id
		req = append(req, target...)
		req = append(req, 0x00)
	}

	if _, err := conn.Write(req); err != nil {
		return fmt.Errorf("transport: socks4 connect request: %w", err)
	}

	reply := make([]byte, 8)
	if _, err := io.ReadFull(conn, reply); err != nil {
		return fmt.Errorf("transport: socks4 connect reply: %w", err)
	}
	if reply[1] != 0x5A {
		return fmt.Errorf("transport: socks4 connect failed with reply byte %#x", reply[1])
	}
	return nil
}

// DialHTTPConnect establishes an HTTP CONNECT tunnel to target over
// conn (already dialed to the proxy), with optional Basic proxy
// credentials (spec §4.7). A 2xx response leaves conn ready to carry
// the tunneled byte stream.
func DialHTTPConnect(conn net.Conn, target string, proxyUser, proxyPass string) error {
	req := "CONNECT " + target + " HTTP/1.1\r\nHost: " + target + "\r\n"
	if proxyUser != "" {
		creds := base64.StdEncoding.EncodeToString([]byte(proxyUser + ":" + proxyPass))
		req += "Proxy-Authorization: Basic " + creds + "\r\n"
	}
	req += "\r\n"

	if _, err := conn.Write([]byte(req)); err != nil {
		return fmt.Errorf("transport: CONNECT request: %w", err)
	}

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("transport: reading CONNECT response: %w", err)
	}
	var statusCode int
	var proto string
	if _, err := fmt.Sscanf(statusLine, "HTTP/%s %d", &proto, &statusCode); err != nil || statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("transport: CONNECT tunnel rejected: %q", statusLine)
	}

	// Drain the rest of the header block.
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("transport: reading CONNECT response headers: %w", err)
		}
		if line == "\r\n" || line == "\n" {
			break
		}
	}
	return nil
}
