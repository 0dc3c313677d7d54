package gstream

import (
	"fmt"
	"math"
)

const (
	appSource   = "appsrc name=" + SourceName + " is-live=true do-timestamp=true format=time"
	h264Encoder = "x264enc bframes=0 key-int-max=45 bitrate=500 tune=zerolatency"
	h264Caps    = "video/x-h264,stream-format=avc,alignment=au,profile=baseline"
)

// encodedCaps are the raw caps fed to the encoder
func encodedCaps(fps float64, width, height int) string {
	return fmt.Sprintf("video/x-raw,format=I420,width=%d,height=%d,framerate=%s", width, height, Framerate(fps))
}

// wholeFPS rounds fps to whole frames per second
func wholeFPS(fps float64) int {
	return int(math.Round(fps))
}
