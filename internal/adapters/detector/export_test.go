package detector

// Detect exports detect for tests.
var Detect = detect
