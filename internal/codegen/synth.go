package codegen

import (
	"fmt"
	"strconv"

	"github.com/roach88/telegen/internal/ir"
)

// Accumulator names used in generated bodies.
const (
	tagsVar   = "tags"
	fieldsVar = "fields"
	tsVar     = "ts"
	valueVar  = "v"
)

// Synthesize emits the statements for one field. recv is the receiver name and
// pkg the qualifier of the runtime package.
//
// Optional fields unwrap through Get() and contribute nothing when absent.
// Timestamps are set only while the slot is empty, so the first timestamp
// field in declaration order wins.
func Synthesize(recv, pkg string, plan ir.FieldPlan) ir.Statement {
	key := strconv.Quote(plan.Field.Name)
	value := recv + "." + plan.Field.Name
	if plan.Optional {
		value = valueVar
	}

	var stmt string
	switch plan.Role {
	case ir.RoleTag:
		stmt = fmt.Sprintf("%s = append(%s, %s.Tag{Key: %s, Value: %s.TagValue(%s)})",
			tagsVar, tagsVar, pkg, key, pkg, value)
	case ir.RoleTimestamp:
		if plan.Optional {
			return ir.Statement(fmt.Sprintf("if %s, ok := %s.%s.Get(); ok && %s == nil {\n\t%s = %s.TimestampOf(%s)\n}",
				valueVar, recv, plan.Field.Name, tsVar, tsVar, pkg, value))
		}
		return ir.Statement(fmt.Sprintf("if %s == nil {\n\t%s = %s.TimestampOf(%s)\n}",
			tsVar, tsVar, pkg, value))
	default:
		stmt = fmt.Sprintf("%s = append(%s, %s.Field{Key: %s, Value: %s.FieldOf(%s)})",
			fieldsVar, fieldsVar, pkg, key, pkg, value)
	}

	if plan.Optional {
		return ir.Statement(fmt.Sprintf("if %s, ok := %s.%s.Get(); ok {\n\t%s\n}",
			valueVar, recv, plan.Field.Name, stmt))
	}
	return ir.Statement(stmt)
}
