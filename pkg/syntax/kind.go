package syntax

import "fmt"

// Kind identifies a composite element of the parse tree.
type Kind int

const (
	Root Kind = iota
	ErrorElement

	File
	PackageStatement
	ImportStatement
	Class
	ClassBody
	TypeParameterList
	TypeParameter
	ExtendsList
	ImplementsList
	Modifiers
	Field
	Method
	ParameterList
	Parameter
	TypeElement
	TypeArgumentList
	ThrowsList

	CodeBlock
	BlockStatement
	EmptyStatement
	ExpressionStatement
	DeclarationStatement
	LocalVariable
	ReturnStatement
	IfStatement
	WhileStatement
	ForStatement

	LiteralExpr
	ReferenceExpr
	ThisExpr
	SuperExpr
	ParenExpr
	TupleExpr
	TupleValueExpr
	BinaryExpr
	PrefixExpr
	PostfixExpr
	TypeCastExpr
	ConditionalExpr
	AssignmentExpr
	InstanceOfExpr
	MethodCallExpr
	NewExpr
	ArrayAccessExpr
	ArrayInitExpr
	LambdaExpr
	ExpressionList
	EmptyExpr
)

var kindNames = [...]string{
	Root:                 "Root",
	ErrorElement:         "ErrorElement",
	File:                 "File",
	PackageStatement:     "PackageStatement",
	ImportStatement:      "ImportStatement",
	Class:                "Class",
	ClassBody:            "ClassBody",
	TypeParameterList:    "TypeParameterList",
	TypeParameter:        "TypeParameter",
	ExtendsList:          "ExtendsList",
	ImplementsList:       "ImplementsList",
	Modifiers:            "Modifiers",
	Field:                "Field",
	Method:               "Method",
	ParameterList:        "ParameterList",
	Parameter:            "Parameter",
	TypeElement:          "TypeElement",
	TypeArgumentList:     "TypeArgumentList",
	ThrowsList:           "ThrowsList",
	CodeBlock:            "CodeBlock",
	BlockStatement:       "BlockStatement",
	EmptyStatement:       "EmptyStatement",
	ExpressionStatement:  "ExpressionStatement",
	DeclarationStatement: "DeclarationStatement",
	LocalVariable:        "LocalVariable",
	ReturnStatement:      "ReturnStatement",
	IfStatement:          "IfStatement",
	WhileStatement:       "WhileStatement",
	ForStatement:         "ForStatement",
	LiteralExpr:          "LiteralExpr",
	ReferenceExpr:        "ReferenceExpr",
	ThisExpr:             "ThisExpr",
	SuperExpr:            "SuperExpr",
	ParenExpr:            "ParenExpr",
	TupleExpr:            "TupleExpr",
	TupleValueExpr:       "TupleValueExpr",
	BinaryExpr:           "BinaryExpr",
	PrefixExpr:           "PrefixExpr",
	PostfixExpr:          "PostfixExpr",
	TypeCastExpr:         "TypeCastExpr",
	ConditionalExpr:      "ConditionalExpr",
	AssignmentExpr:       "AssignmentExpr",
	InstanceOfExpr:       "InstanceOfExpr",
	MethodCallExpr:       "MethodCallExpr",
	NewExpr:              "NewExpr",
	ArrayAccessExpr:      "ArrayAccessExpr",
	ArrayInitExpr:        "ArrayInitExpr",
	LambdaExpr:           "LambdaExpr",
	ExpressionList:       "ExpressionList",
	EmptyExpr:            "EmptyExpr",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsExpression reports whether elements of kind k are expressions.
func (k Kind) IsExpression() bool {
	return k >= LiteralExpr && k <= LambdaExpr
}

// IsStatement reports whether elements of kind k are statements.
func (k Kind) IsStatement() bool {
	return k >= BlockStatement && k <= ForStatement
}
