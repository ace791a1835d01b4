// Package registration recovers the spatial registration recorded in an
// Elekta XVI RPS DICOM file and decomposes it into the clinical 6-DOF shift
// record used for trial transfer.
//
// The vendor nests the data three containers deep: a DICOM record whose
// private element (0021,103A) holds a ZIP archive, whose .INI.XVI member
// holds key=value text, whose fields hold 16-float transforms and 6-value
// alignment tuples. Each stage here is a pure transform over in-memory
// buffers so the stages unit-test independently:
//
//	archive bytes -> members -> xvi.Document -> matrices/tuples -> ShiftRecord
package registration
