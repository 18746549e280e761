//go:build !noimaging

package imagingengine

import "github.com/ironsheep/image-transform/internal/engine"

func init() {
	engine.Register(engine.Imaging, New)
}
