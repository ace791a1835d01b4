package registration

// VendorAxis identifies a component of the vendor alignment tuple.
type VendorAxis int

const (
	VendorLateral VendorAxis = iota
	VendorLongitudinal
	VendorVertical
	VendorRotation
	VendorPitch
	VendorRoll
)

// AxisSource names which vendor axis feeds a clinical value and with which
// sign. Keeping the permutation as data makes the reverse-engineered
// convention auditable and testable in isolation from parsing.
type AxisSource struct {
	Vendor VendorAxis
	Sign   float64
}

// ClinicalMapping is the validated vendor-to-clinical axis/sign convention.
//
// It was established by matching RPS clipbox values against an independent
// record-and-verify log over one patient, four fractions: translations map
// directly, but the rotation axes are permuted between the two systems and
// the transverse rotation flips sign. Treat it as a fixed contract; update
// it here (never inline in pipeline code) if wider validation revises it.
var ClinicalMapping = struct {
	Lateral      AxisSource
	Longitudinal AxisSource
	Vertical     AxisSource
	Coronal      AxisSource
	Sagittal     AxisSource
	Transverse   AxisSource
}{
	Lateral:      AxisSource{VendorLateral, +1},
	Longitudinal: AxisSource{VendorLongitudinal, +1},
	Vertical:     AxisSource{VendorVertical, +1},
	Coronal:      AxisSource{VendorRoll, +1},
	Sagittal:     AxisSource{VendorRotation, +1},
	Transverse:   AxisSource{VendorPitch, -1},
}

// UnwrapAngle normalizes a vendor rotation written in [0,360) into a signed
// angle: values at or above 180 wrap to their negative equivalent. It is a
// no-op on already-signed values in (-180, 180].
func UnwrapAngle(v float64) float64 {
	if v >= 180 {
		return v - 360
	}
	return v
}

// ShiftRecord is the canonical clinical correction for one registration.
// Translations are centimeters, rotations degrees, both in the clinical
// reporting sign convention. Immutable after construction.
type ShiftRecord struct {
	Lateral      float64
	Longitudinal float64
	Vertical     float64
	Coronal      float64
	Sagittal     float64
	Transverse   float64

	// Applied reports whether any component is non-zero after unwrap.
	Applied bool

	// Raw vendor matrices retained for audit, nil when the record omits them.
	Unmatched  *Matrix4
	Correction *Matrix4
}

// CouchShift is the physical table movement corresponding to a correction,
// sign-opposite to the image-space values. Rotations are pointers because
// couch rotations are not derivable from the clipbox tuple: they stay nil
// (unavailable) rather than defaulting to zero.
type CouchShift struct {
	Lateral      float64
	Longitudinal float64
	Vertical     float64
	Pitch        *float64
	Roll         *float64
	Yaw          *float64
}

// Reconcile converts a vendor alignment tuple into the clinical shift
// record by applying the rotation unwrap and the fixed axis/sign mapping.
func Reconcile(t AlignmentTuple) ShiftRecord {
	resolve := func(src AxisSource, rotation bool) float64 {
		v := t.vendorValue(src.Vendor)
		if rotation {
			v = UnwrapAngle(v)
		}
		return src.Sign * v
	}

	rec := ShiftRecord{
		Lateral:      resolve(ClinicalMapping.Lateral, false),
		Longitudinal: resolve(ClinicalMapping.Longitudinal, false),
		Vertical:     resolve(ClinicalMapping.Vertical, false),
		Coronal:      resolve(ClinicalMapping.Coronal, true),
		Sagittal:     resolve(ClinicalMapping.Sagittal, true),
		Transverse:   resolve(ClinicalMapping.Transverse, true),
	}
	rec.Applied = rec.Lateral != 0 || rec.Longitudinal != 0 || rec.Vertical != 0 ||
		rec.Coronal != 0 || rec.Sagittal != 0 || rec.Transverse != 0
	return rec
}

// CouchShift derives the table movement from the clinical record.
func (r ShiftRecord) CouchShift() CouchShift {
	return CouchShift{
		Lateral:      -r.Lateral,
		Longitudinal: -r.Longitudinal,
		Vertical:     -r.Vertical,
	}
}
