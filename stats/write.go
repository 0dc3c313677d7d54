package stats

import (
	"strconv"
	"time"
)

// the Write* functions append one "<prefix><key> <value> <unix ts>\n" line to buf

func WriteFloat64(buf, prefix, key []byte, val float64, now time.Time) []byte {
	buf = append(buf, prefix...)
	buf = append(buf, key...)
	buf = append(buf, ' ')
	buf = strconv.AppendFloat(buf, val, 'f', -1, 64)
	return appendTimestamp(buf, now)
}

func WriteUint32(buf, prefix, key []byte, val uint32, now time.Time) []byte {
	return WriteUint64(buf, prefix, key, uint64(val), now)
}

func WriteInt32(buf, prefix, key []byte, val int32, now time.Time) []byte {
	buf = append(buf, prefix...)
	buf = append(buf, key...)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(val), 10)
	return appendTimestamp(buf, now)
}

func WriteUint64(buf, prefix, key []byte, val uint64, now time.Time) []byte {
	buf = append(buf, prefix...)
	buf = append(buf, key...)
	buf = append(buf, ' ')
	buf = strconv.AppendUint(buf, val, 10)
	return appendTimestamp(buf, now)
}

func appendTimestamp(buf []byte, now time.Time) []byte {
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, now.Unix(), 10)
	return append(buf, '\n')
}
