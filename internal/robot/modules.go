package robot

import (
	"math/rand"

	"github.com/aresgrid/ares-engine/internal/hex"
)

// Modules names the eight module families fitted to a robot. The stat
// tables below are frozen lookups; unknown names fall back to the
// weakest entry of their family.
type Modules struct {
	Collector   string `json:"collector"`
	DriveSystem string `json:"driveSystem"`
	ExfilBeacon string `json:"exfilBeacon"`
	Hull        string `json:"hull"`
	Memory      string `json:"memory"`
	Power       string `json:"power"`
	Scanner     string `json:"scanner"`
	Weapons     string `json:"weapons"`
}

var (
	collectorNames = []string{"basic", "foxterra", "ultratech"}
	driveNames     = []string{"basic", "allterrain", "gravlift"}
	beaconNames    = []string{"basic", "pulse"}
	hullNames      = []string{"basic", "reinforced", "titan"}
	powerNames     = []string{"basic", "plus", "foxline"}
	scannerNames   = []string{
		"basic", "plus",
		"triscan", "triscan_advanced", "triscan_ultra",
		"boxium_starter", "boxium_advanced", "boxium_ultra",
		"omni_basic", "omni_ultra",
	}
	weaponNames = []string{"none", "blaster", "supreme_blaster"}
)

// RandomModules rolls a full module set. Two couplings apply: the
// memory module always matches the scanner's appetite, and an
// ultratech collector on a basic power plant promotes the power plant
// to plus so mining stays affordable.
func RandomModules(rng *rand.Rand) Modules {
	m := Modules{
		Collector:   collectorNames[rng.Intn(len(collectorNames))],
		DriveSystem: driveNames[rng.Intn(len(driveNames))],
		ExfilBeacon: beaconNames[rng.Intn(len(beaconNames))],
		Hull:        hullNames[rng.Intn(len(hullNames))],
		Power:       powerNames[rng.Intn(len(powerNames))],
		Scanner:     scannerNames[rng.Intn(len(scannerNames))],
		Weapons:     weaponNames[rng.Intn(len(weaponNames))],
	}

	m.Memory = MemoryForScanner(m.Scanner)
	if m.Collector == "ultratech" && m.Power == "basic" {
		m.Power = "plus"
	}

	return m
}

// MemoryForScanner pairs a scanner with the memory module able to hold
// its scan output.
func MemoryForScanner(scanner string) string {
	switch scanner {
	case "basic", "plus", "triscan":
		return "basic"
	case "triscan_advanced", "triscan_ultra", "boxium_starter":
		return "plus"
	case "boxium_advanced":
		return "ikito"
	case "boxium_ultra", "omni_basic", "omni_ultra":
		return "jindai"
	default:
		return "basic"
	}
}

// ScannerFOV is the scan arc in degrees; zero means straight ahead
// only.
func ScannerFOV(name string) int32 {
	switch name {
	case "triscan", "triscan_advanced", "triscan_ultra":
		return 120
	case "boxium_starter", "boxium_advanced", "boxium_ultra":
		return 240
	case "omni_basic", "omni_ultra":
		return 360
	default:
		return 0
	}
}

// ScannerRange is the scan reach in rings.
func ScannerRange(name string) int32 {
	switch name {
	case "basic", "triscan", "boxium_starter":
		return 1
	case "plus", "triscan_advanced", "boxium_advanced", "omni_basic":
		return 2
	case "triscan_ultra", "boxium_ultra":
		return 3
	case "omni_ultra":
		return 4
	default:
		return 1
	}
}

// ScannerPowerUsage is the energy cost of one scan.
func ScannerPowerUsage(name string) int32 {
	switch name {
	case "basic":
		return 20
	case "plus":
		return 30
	case "triscan":
		return 60
	case "triscan_advanced":
		return 80
	case "triscan_ultra":
		return 120
	case "boxium_starter":
		return 250
	case "boxium_advanced":
		return 350
	case "boxium_ultra":
		return 1000
	case "omni_basic":
		return 500
	case "omni_ultra":
		return 2000
	default:
		return 20
	}
}

// ScannerAccuracy is the percent chance a threat reading is conclusive.
func ScannerAccuracy(name string) int32 {
	switch name {
	case "basic", "plus":
		return 100
	case "triscan", "triscan_advanced":
		return 75
	case "triscan_ultra":
		return 50
	case "boxium_starter", "boxium_advanced", "boxium_ultra":
		return 80
	case "omni_basic", "omni_ultra":
		return 0
	default:
		return 100
	}
}

// PowerMax is the capacity of a power plant.
func PowerMax(name string) int32 {
	switch name {
	case "plus":
		return 1500
	case "foxline":
		return 3000
	default:
		return 1000
	}
}

// PowerRecharge is the per-tick recharge rate of a power plant.
func PowerRecharge(name string) int32 {
	switch name {
	case "plus":
		return 300
	case "foxline":
		return 1000
	default:
		return 150
	}
}

// MemorySize is how many grid cells a memory module can retain.
func MemorySize(name string) int {
	switch name {
	case "plus":
		return 30
	case "ikito":
		return 40
	case "jindai":
		return 80
	default:
		return 20
	}
}

// WeaponRange is the firing reach in cells.
func WeaponRange(name string) int32 {
	switch name {
	case "blaster":
		return 1
	case "supreme_blaster":
		return 2
	default:
		return 0
	}
}

// WeaponFOV is the firing arc; zero means straight ahead only.
func WeaponFOV(name string) int32 {
	return 0
}

// WeaponMaxDamage is the upper damage bound; zero means unarmed.
func WeaponMaxDamage(name string) int32 {
	switch name {
	case "blaster":
		return 250
	case "supreme_blaster":
		return 500
	default:
		return 0
	}
}

// WeaponMinDamage is the lower damage bound.
func WeaponMinDamage(name string) int32 {
	switch name {
	case "blaster":
		return 100
	case "supreme_blaster":
		return 250
	default:
		return 0
	}
}

// WeaponCoolDown is the ticks between shots.
func WeaponCoolDown(name string) int32 {
	return 0
}

// WeaponPowerUsage is the energy cost of one shot.
func WeaponPowerUsage(name string) int32 {
	switch name {
	case "blaster":
		return 500
	case "supreme_blaster":
		return 1000
	default:
		return 0
	}
}

// CollectorPowerUsage is the energy cost of one mining tick.
func CollectorPowerUsage(name string) int32 {
	switch name {
	case "foxterra":
		return 1000
	case "ultratech":
		return 1500
	default:
		return 500
	}
}

// CollectorRate is how much a collector mines per tick.
func CollectorRate(name string) int32 {
	switch name {
	case "foxterra":
		return 25
	case "ultratech":
		return 50
	default:
		return 10
	}
}

// CollectorMax is the inventory capacity granted by a collector.
func CollectorMax(name string) int32 {
	switch name {
	case "foxterra":
		return 500
	case "ultratech":
		return 1000
	default:
		return 200
	}
}

// DrivePowerUsage is the energy cost of one movement step.
func DrivePowerUsage(name string) int32 {
	switch name {
	case "allterrain":
		return 80
	case "gravlift":
		return 120
	default:
		return 50
	}
}

// HullMaxStrength is the damage budget of a hull.
func HullMaxStrength(name string) int32 {
	switch name {
	case "reinforced":
		return 2000
	case "titan":
		return 5000
	default:
		return 1000
	}
}

// ExfilDelay is the ticks between calling for extraction and leaving.
func ExfilDelay(name string) int32 {
	switch name {
	case "pulse":
		return 5
	default:
		return 10
	}
}

// ExfilPowerUsage is the energy cost of lighting the beacon.
func ExfilPowerUsage(name string) int32 {
	switch name {
	case "pulse":
		return 250
	default:
		return 100
	}
}

// WeaponInRange reports whether a target is within both the reach and
// the firing arc of a weapon held by a shooter at from facing dir.
func WeaponInRange(name string, from hex.Coord, dir hex.Dir, target hex.Coord) bool {
	if from.DistanceTo(target) > WeaponRange(name) {
		return false
	}

	bearing, ok := hex.Bearing(dir, from, target)
	if !ok {
		return false
	}

	fov := WeaponFOV(name)
	if fov == 0 {
		return bearing == 0
	}
	return abs32(int32(bearing))*2 <= fov
}
