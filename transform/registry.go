package transform

// sharedOperators holds operators available under either dialect.
var sharedOperators = map[string]OperatorFunc{
	"static":        opStatic,
	"object":        opObject,
	"map":           opMap,
	"array":         opArray,
	"substring":     opSubstring,
	"length":        opLength,
	"count":         opCount,
	"hash":          opHash,
	"join":          opJoin,
	"split":         opSplit,
	"filter":        opFilter,
	"union":         opUnion,
	"slice":         opSlice,
	"case":          opCase,
	"replace":       opReplace,
	"match":         opMatch,
	"render":        opRender,
	"parseDate":     opParseDate,
	"formatDate":    opFormatDate,
	"now":           opNow,
	"fromJson":      opFromJSON,
	"toJson":        opToJSON,
	"fromXml":       opFromXML,
	"toXml":         opToXML,
	"fromBase64":    opFromBase64,
	"toBase64":      opToBase64,
	"toFormData":    opToFormData,
	"fromFormData":  opFromFormData,
	"lowerCase":     opLowerCase,
	"upperCase":     opUpperCase,
	"camelCase":     opCamelCase,
	"kebabCase":     opKebabCase,
	"snakeCase":     opSnakeCase,
	"nameCase":      opNameCase,
	"capitalize":    opCapitalize,
	"deburr":        opDeburr,
	"htmlTag":       opHTMLTag,
	"htmlTags":      opHTMLTags,
	"htmlTagText":   opHTMLTagText,
	"htmlTagsText":  opHTMLTagsText,
	"htmlAttribute": opHTMLAttribute,
	"htmlTable":     opHTMLTable,
	"assert":        opAssert,
	"keys":          opKeys,
	"omit":          opOmit,
	"pick":          opPick,
	"changed":       opChanged,
	"change":        opChange,
}

var pointerOperators = map[string]OperatorFunc{
	"get": opGet,
}

var jsonPathOperators = map[string]OperatorFunc{
	"single":   opSingle,
	"multiple": opMultiple,
}

func lookupOperator(dialect Dialect, name string) (OperatorFunc, bool) {
	switch dialect {
	case DialectPointer:
		if h, ok := pointerOperators[name]; ok {
			return h, true
		}
	case DialectJSONPath:
		if h, ok := jsonPathOperators[name]; ok {
			return h, true
		}
	}
	h, ok := sharedOperators[name]
	return h, ok
}
