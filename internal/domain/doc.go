// Package domain models the data flowing through the swell forecasting core:
// buoy spectral decompositions, extracted storm systems, arrival predictions,
// and the prediction/actual/validation records used to score past forecasts.
//
// # Buoy Spectral Records
//
// Observations come from NDBC (National Data Buoy Center) realtime2 spectral
// summary files, one whitespace-separated line per observation:
//
//	YY MM DD hh mm WVHT SwH SwP WWH WWP SwD WWD STEEPNESS APD MWD
//
// Heights are meters, periods seconds. Values of 99.0 or greater are the
// NDBC missing-data sentinel. Swell and wind-wave directions are 16-point
// compass labels ("NW", "ENE", ...) with "MM" meaning missing. The steepness
// code is carried in the file but unused here.
//
// # Storm Systems
//
// StormInfo records are mined from free-form marine weather analysis text.
// Coordinates, wind speed, central pressure, fetch, and duration are regex
// extracted where explicit and inferred from descriptor keywords or named
// storm-generation regions otherwise. Confidence is an additive heuristic
// score, not a probability: 0.5 base, plus fixed bonuses for each explicitly
// extracted parameter, capped at 1.0. Changing the weights changes observable
// behavior downstream and is treated as a compatibility break.
//
// Storm IDs combine the nearest named generation region, the detection date,
// and a per-extraction sequence number: "kamchatka_20251008_001". The region
// in the ID is a label only; it is chosen by nearest-distance lookup even
// when the storm's coordinates were regex-extracted.
//
// # Validation Records
//
// A ValidationRecord is created only for a prediction matched to an observed
// buoy reading within the tolerance window. Per-pair height/period/direction
// errors live on the record alongside the run-level aggregate MAE/RMSE, so a
// single row is self-describing when queried later.
package domain
