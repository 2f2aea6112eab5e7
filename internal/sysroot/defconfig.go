package sysroot

import (
	"fmt"
	"strings"
)

// archSpec carries the crosstool-NG architecture switches for one CPU
// family.
type archSpec struct {
	arch     string
	bits64   bool
	little   bool
	suffix   string // CT_ARCH_SUFFIX, e.g. "v7l"
	floatABI string // CT_ARCH_FLOAT_*, hard-float targets only
}

var archSpecs = map[string]archSpec{
	"x86_64":      {arch: "x86", bits64: true, little: true},
	"aarch64":     {arch: "arm", bits64: true, little: true},
	"armv7l":      {arch: "arm", little: true, suffix: "v7l", floatABI: "hw"},
	"riscv64":     {arch: "riscv", bits64: true, little: true},
	"powerpc64le": {arch: "powerpc", bits64: true, little: true},
	"s390x":       {arch: "s390", bits64: true},
}

// DefconfigFor renders the crosstool-NG defconfig for a target. The
// configuration asks for the bare minimum needed to compile target
// libraries: a pass-1 style compiler with a sysroot, no debuggers, no extra
// languages.
func DefconfigFor(target, gccVersion, prefix string) (string, error) {
	cpu, rest, ok := strings.Cut(target, "-")
	if !ok {
		return "", fmt.Errorf("sysroot: malformed target triplet %q", target)
	}
	spec, ok := archSpecs[cpu]
	if !ok {
		return "", fmt.Errorf("sysroot: unsupported architecture %q in target %q", cpu, target)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CT_ARCH_%s=y\n", strings.ToUpper(spec.arch))
	if spec.bits64 {
		b.WriteString("CT_ARCH_64=y\n")
	}
	if spec.little {
		b.WriteString("CT_ARCH_LE=y\n")
	} else {
		b.WriteString("CT_ARCH_BE=y\n")
	}
	if spec.suffix != "" {
		fmt.Fprintf(&b, "CT_ARCH_SUFFIX=%q\n", spec.suffix)
	}
	if spec.floatABI != "" {
		fmt.Fprintf(&b, "CT_ARCH_FLOAT_%s=y\n", strings.ToUpper(spec.floatABI))
	}
	if strings.Contains(rest, "linux") {
		b.WriteString("CT_KERNEL_LINUX=y\n")
	}
	fmt.Fprintf(&b, "CT_PREFIX_DIR=%q\n", prefix)
	fmt.Fprintf(&b, "CT_GCC_VERSION=%q\n", gccVersion)
	// Library-only bootstrap: no gdb, no extra languages, static core.
	b.WriteString("CT_CC_LANG_CXX=y\n")
	b.WriteString("# CT_DEBUG_GDB is not set\n")
	b.WriteString("# CT_CC_GCC_BUILD_GRAPHITE is not set\n")
	b.WriteString("CT_CC_GCC_STATIC_LIBSTDCXX=y\n")
	return b.String(), nil
}
