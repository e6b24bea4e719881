package vkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSPIRV(t *testing.T) {
	header := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0, 0, 0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0}
	assert.NoError(t, checkSPIRV(header))

	assert.ErrorIs(t, checkSPIRV(header[:12]), ErrNotSPIRV)
	assert.ErrorIs(t, checkSPIRV(append(header, 1)), ErrNotSPIRV)

	glsl := []byte("#version 450\nvoid main() {}\n\n\n")
	assert.ErrorIs(t, checkSPIRV(glsl[:len(glsl)-len(glsl)%4]), ErrNotSPIRV)
}
