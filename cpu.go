/*
 * MinIO Cloud Storage, (C) 2020 MinIO, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package zmin

import (
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// CpuTier is the widest SIMD tier the detector selected.
type CpuTier int

const (
	// TierScalar means no usable SIMD whitespace-scanning primitives were
	// found; the block minifier degenerates to the streaming machine.
	TierScalar CpuTier = iota
	// Tier128 is 128-bit (SSE2-class) vector width.
	Tier128
	// Tier256 is 256-bit (AVX2-class) vector width.
	Tier256
	// Tier512 is 512-bit (AVX-512 foundation + byte/word subset) vector
	// width.
	Tier512
)

func (t CpuTier) String() string {
	switch t {
	case TierScalar:
		return "scalar"
	case Tier128:
		return "128-bit"
	case Tier256:
		return "256-bit"
	case Tier512:
		return "512-bit"
	default:
		return "unknown"
	}
}

// CpuCaps is the immutable, process-wide CPU capability record: the
// detected tier and its natural vector width in bytes.
type CpuCaps struct {
	Tier        CpuTier
	VectorWidth int // 1, 16, 32, or 64
}

var (
	capsOnce sync.Once
	caps     CpuCaps
)

// Detect returns the selected SIMD tier and vector width. The result is
// computed once per process and cached; repeated calls are free. On any
// probing uncertainty the result degrades to TierScalar rather than
// failing.
func Detect() CpuCaps {
	capsOnce.Do(func() {
		caps = detectOnce()
	})
	return caps
}

func detectOnce() (c CpuCaps) {
	defer func() {
		// cpuid must never fault under normal operation, but if the
		// feature probe itself panics (e.g. restricted environment),
		// degrade rather than propagate.
		if recover() != nil {
			c = CpuCaps{Tier: TierScalar, VectorWidth: 1}
		}
	}()

	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512BW):
		return CpuCaps{Tier: Tier512, VectorWidth: 64}
	case cpuid.CPU.Supports(cpuid.AVX2, cpuid.CLMUL):
		return CpuCaps{Tier: Tier256, VectorWidth: 32}
	case cpuid.CPU.Supports(cpuid.SSE2):
		return CpuCaps{Tier: Tier128, VectorWidth: 16}
	default:
		return CpuCaps{Tier: TierScalar, VectorWidth: 1}
	}
}
