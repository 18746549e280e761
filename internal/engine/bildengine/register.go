//go:build !nobild

package bildengine

import "github.com/ironsheep/image-transform/internal/engine"

func init() {
	engine.Register(engine.Bild, New)
}
