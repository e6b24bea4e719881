package vkt

import (
	"bytes"
	"encoding/binary"
	"unsafe"
)

func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

//Vulkan expects SPIR-V code as 32-bit words
func sliceUint32(data []byte) []uint32 {
	words := make([]uint32, (len(data)+3)/4)
	padded := make([]byte, len(words)*4)
	copy(padded, data)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(padded[i*4:])
	}
	return words
}

//Encodes fixed size values little endian for upload into mapped memory
func Bytes(values ...interface{}) ([]byte, error) {
	var buf bytes.Buffer
	for _, v := range values {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func mapped(ptr unsafe.Pointer, size int) []byte {
	return unsafe.Slice((*byte)(ptr), size)
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}
