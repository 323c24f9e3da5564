package utils

import (
	"math/rand"
)

// AvatarColors is the palette new accounts draw their avatar color from.
var AvatarColors = []string{
	"#6366f1", "#8b5cf6", "#ec4899", "#ef4444",
	"#f59e0b", "#10b981", "#3b82f6", "#06b6d4",
}

// RandomAvatarColor picks a color from AvatarColors.
func RandomAvatarColor() string {
	return AvatarColors[rand.Intn(len(AvatarColors))]
}
