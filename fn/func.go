package fn

// Unit is the type with a single value. It stands in for "no result" in
// generic code such as Try[Unit] or Future[Unit].
type Unit = struct{}

// UnitValue is the only inhabitant of Unit.
var UnitValue Unit
