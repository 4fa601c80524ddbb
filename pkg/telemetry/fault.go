package telemetry

import "strconv"

// FaultPrefix starts every fault line. Parse rejects such lines, so readers
// skip them like any other non-record output.
const FaultPrefix = "# "

// AppendFault appends a fault line to dst, without the trailing newline.
// Each %v, %w, %s or %d verb is replaced by the next argument. Errors,
// strings, bools and integers are rendered; other values print as "?".
func AppendFault(dst []byte, format string, args ...any) []byte {
	dst = append(dst, FaultPrefix...)
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 == len(format) {
			dst = append(dst, c)
			continue
		}
		i++
		switch format[i] {
		case '%':
			dst = append(dst, '%')
		case 'v', 'w', 's', 'd':
			if len(args) == 0 {
				dst = append(dst, "%!"...)
				dst = append(dst, format[i])
				continue
			}
			dst = appendArg(dst, args[0])
			args = args[1:]
		default:
			dst = append(dst, '%', format[i])
		}
	}
	return dst
}

func appendArg(dst []byte, arg any) []byte {
	switch v := arg.(type) {
	case error:
		return append(dst, v.Error()...)
	case string:
		return append(dst, v...)
	case bool:
		return strconv.AppendBool(dst, v)
	case int:
		return strconv.AppendInt(dst, int64(v), 10)
	case int64:
		return strconv.AppendInt(dst, v, 10)
	case uint32:
		return strconv.AppendUint(dst, uint64(v), 10)
	default:
		return append(dst, '?')
	}
}
