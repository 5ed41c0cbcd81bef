package transport

import (
	"bufio"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialSOCKS5Success(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- DialSOCKS5(client, "example.com", 443)
	}()

	method := make([]byte, 3)
	_, err := io.ReadFull(server, method)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0x01, 0x00}, method)
	_, err = server.Write([]byte{0x05, 0x00})
	require.NoError(t, err)

	req := make([]byte, 4)
	_, err = io.ReadFull(server, req)
	require.NoError(t, err)
	assert.Equal(t, byte(0x03), req[3]) // domain address type

	lenByte := make([]byte, 1)
	_, err = io.ReadFull(server, lenByte)
	require.NoError(t, err)
	domain := make([]byte, lenByte[0])
	_, err = io.ReadFull(server, domain)
	require.NoError(t, err)
	assert.Equal(t, "example.com", string(domain))
	port := make([]byte, 2)
	_, err = io.ReadFull(server, port)
	require.NoError(t, err)

	// reply: success, IPv4 bound address
	_, err = server.Write([]byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	require.NoError(t, <-done)
}

func TestDialSOCKS5RejectsNonZeroReply(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- DialSOCKS5(client, "10.0.0.1", 80)
	}()

	io.ReadFull(server, make([]byte, 3))
	server.Write([]byte{0x05, 0x00})
	io.ReadFull(server, make([]byte, 4+4+2)) // IPv4 addressed request
	server.Write([]byte{0x05, 0x01, 0x00, 0x01, 0, 0, 0, 0, 0, 0})

	err := <-done
	assert.Error(t, err)
}

func TestDialSOCKS4Success(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- DialSOCKS4(client, "10.0.0.5", 80)
	}()

	req := make([]byte, 9) // 4 header + 4 addr + 1 empty user-id
	_, err := io.ReadFull(server, req)
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), req[0])
	assert.Equal(t, byte(0x01), req[1])

	_, err = server.Write([]byte{0x00, 0x5A, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	require.NoError(t, <-done)
}

func TestDialSOCKS4AWithHostname(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- DialSOCKS4(client, "example.com", 443)
	}()

	reader := bufio.NewReader(server)
	header := make([]byte, 9)
	_, err := io.ReadFull(reader, header)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, header[4:8])

	host, err := reader.ReadString(0x00)
	require.NoError(t, err)
	assert.Equal(t, "example.com\x00", host)

	_, err = server.Write([]byte{0x00, 0x5A, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestDialSOCKS4Rejected(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- DialSOCKS4(client, "10.0.0.5", 80)
	}()

	io.ReadFull(server, make([]byte, 9))
	server.Write([]byte{0x00, 0x5B, 0, 0, 0, 0, 0, 0})

	assert.Error(t, <-done)
}

func TestDialHTTPConnectSuccess(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- DialHTTPConnect(client, "example.com:443", "user", "pass")
	}()

	reader := bufio.NewReader(server)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "CONNECT example.com:443 HTTP/1.1\r\n", line)

	sawAuth := false
	for {
		l, err := reader.ReadString('\n')
		require.NoError(t, err)
		if l == "\r\n" {
			break
		}
		if l == "Proxy-Authorization: Basic dXNlcjpwYXNz\r\n" {
			sawAuth = true
		}
	}
	assert.True(t, sawAuth)

	_, err = server.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n"))
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestDialHTTPConnectRejected(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- DialHTTPConnect(client, "example.com:443", "", "")
	}()

	reader := bufio.NewReader(server)
	for {
		l, err := reader.ReadString('\n')
		require.NoError(t, err)
		if l == "\r\n" {
			break
		}
	}
	server.Write([]byte("HTTP/1.1 407 Proxy Authentication Required\r\n\r\n"))

	assert.Error(t, <-done)
}
