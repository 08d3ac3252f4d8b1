package btthermo

import (
	"fmt"

	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

const defaultSPIFrequency = 5 * physic.MegaHertz

// SPIReader reads a thermocouple converter over a half-duplex SPI link (SO / SCK / CS)
type SPIReader struct {
	portName  string
	frequency physic.Frequency

	port spi.PortCloser
	conn conn.Conn
}

// WithSPIPort sets the SPI port name (empty selects the first registered port)
func WithSPIPort(name string) func(*SPIReader) {
	return func(r *SPIReader) {
		r.portName = name
	}
}

// WithSPIFrequency sets the SPI clock frequency
func WithSPIFrequency(f physic.Frequency) func(*SPIReader) {
	return func(r *SPIReader) {
		r.frequency = f
	}
}

// WithSPIConn sets an already established connection, skipping host initialization
func WithSPIConn(c conn.Conn) func(*SPIReader) {
	return func(r *SPIReader) {
		r.conn = c
	}
}

// NewSPIReader instantiates a new SPIReader, executing functional options, if any
func NewSPIReader(options ...func(*SPIReader)) (*SPIReader, error) {

	r := &SPIReader{
		frequency: defaultSPIFrequency,
	}

	for _, option := range options {
		option(r)
	}

	if r.conn != nil {
		return r, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize host drivers: %w", err)
	}

	port, err := spireg.Open(r.portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port `%s`: %w", r.portName, err)
	}

	c, err := port.Connect(r.frequency, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect to SPI port `%s`: %w", r.portName, err)
	}

	r.port, r.conn = port, c

	return r, nil
}

// Read performs a single 16-bit transfer and decodes it, without retries
func (r *SPIReader) Read() (float64, error) {
	word, err := r.ReadWord()
	if err != nil {
		return 0, err
	}
	return DecodeWord(word)
}

// ReadWord performs a single 16-bit transfer and returns the raw big-endian word
func (r *SPIReader) ReadWord() (uint16, error) {
	rx := make([]byte, 2)
	if err := r.conn.Tx(make([]byte, 2), rx); err != nil {
		return 0, fmt.Errorf("failed to transfer sensor word: %w", err)
	}

	return uint16(rx[0])<<8 | uint16(rx[1]), nil
}

// Close releases the SPI port (if opened by the reader)
func (r *SPIReader) Close() error {
	if r.port == nil {
		return nil
	}
	return r.port.Close()
}

// String fulfils the Stringer interface
func (r *SPIReader) String() string {
	return fmt.Sprintf("SPIReader(%s)", r.conn)
}
