// Package common holds the plain value types and column-major matrix helpers shared
// by the engine packages.
package common

import "github.com/cogentcore/webgpu/wgpu"

// SamplerStagingData describes a sampler before the device creates it. Zero fields
// fall back to the device defaults.
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                 float32
	// Compare turns the sampler into a comparison sampler, as used for shadow maps.
	Compare       wgpu.CompareFunction
	MaxAnisotropy uint16
}
