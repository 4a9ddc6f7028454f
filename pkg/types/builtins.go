package types

const javaLang = "java.lang"
const javaUtil = "java.util"

// Object is the root of the class hierarchy.
var Object = &Class{Name: "Object", Package: javaLang}

var builtins = map[string]*Class{}

var boxes = map[Primitive]*Class{}

// ObjectType returns a reference to Object.
func ObjectType() *ClassType {
	return &ClassType{Decl: Object}
}

// Builtin returns the built-in class with the given simple name, or nil.
func Builtin(name string) *Class {
	return builtins[name]
}

// Builtins returns every built-in class.
func Builtins() []*Class {
	classes := make([]*Class, 0, len(builtins))
	for _, c := range builtins {
		classes = append(classes, c)
	}
	return classes
}

// Box returns the wrapper class of p, or nil for void.
func Box(p Primitive) *Class {
	return boxes[p]
}

// Unbox returns the primitive wrapped by c.
func Unbox(c *Class) (Primitive, bool) {
	for p, box := range boxes {
		if box == c {
			return p, true
		}
	}
	return "", false
}

// BoxType returns the reference form of t: the wrapper for a primitive,
// t itself otherwise.
func BoxType(t Type) Type {
	if p, ok := t.(Primitive); ok {
		if box := Box(p); box != nil {
			return box.Raw()
		}
	}
	return t
}

func declare(pkg, name string, params ...string) *Class {
	c := &Class{Name: name, Package: pkg}
	for _, p := range params {
		c.TypeParams = append(c.TypeParams, NewTypeVar(p))
	}
	builtins[name] = c
	return c
}

func method(c *Class, name string, ret Type, params ...Type) *Method {
	m := &Method{Name: name, Return: ret}
	for i, p := range params {
		m.Params = append(m.Params, &Param{Name: string(rune('a' + i)), Type: p})
	}
	c.AddMethod(m)
	return m
}

func init() {
	builtins[Object.Name] = Object
	method(Object, "toString", nil)
	method(Object, "hashCode", Int)
	method(Object, "equals", Boolean, ObjectType())

	comparable := declare(javaLang, "Comparable", "T")
	comparable.Interface = true
	method(comparable, "compareTo", Int, comparable.TypeParams[0])

	charSeq := declare(javaLang, "CharSequence")
	charSeq.Interface = true
	method(charSeq, "length", Int)
	method(charSeq, "charAt", Char, Int)

	str := declare(javaLang, "String")
	str.Interfaces = []*ClassType{charSeq.Raw(), NewClassType(comparable, str.Raw())}
	method(str, "length", Int)
	method(str, "charAt", Char, Int)
	method(str, "substring", str.Raw(), Int, Int)
	method(str, "isEmpty", Boolean)
	Object.Methods[0].Return = str.Raw()

	number := declare(javaLang, "Number")
	for _, p := range []Primitive{Int, Long, Float, Double} {
		method(number, string(p)+"Value", p)
	}

	for p, name := range map[Primitive]string{
		Boolean: "Boolean",
		Byte:    "Byte",
		Char:    "Character",
		Short:   "Short",
		Int:     "Integer",
		Long:    "Long",
		Float:   "Float",
		Double:  "Double",
	} {
		box := declare(javaLang, name)
		if p.IsNumeric() && p != Char {
			box.Super = number.Raw()
		}
		box.Interfaces = []*ClassType{NewClassType(comparable, box.Raw())}
		boxes[p] = box
	}

	iterable := declare(javaLang, "Iterable", "T")
	iterable.Interface = true

	collection := declare(javaUtil, "Collection", "E")
	collection.Interface = true
	collection.Interfaces = []*ClassType{NewClassType(iterable, collection.TypeParams[0])}
	method(collection, "size", Int)
	method(collection, "isEmpty", Boolean)
	method(collection, "add", Boolean, collection.TypeParams[0])
	method(collection, "contains", Boolean, ObjectType())

	list := declare(javaUtil, "List", "E")
	list.Interface = true
	list.Interfaces = []*ClassType{NewClassType(collection, list.TypeParams[0])}
	method(list, "get", list.TypeParams[0], Int)
	method(list, "set", list.TypeParams[0], Int, list.TypeParams[0])

	arrayList := declare(javaUtil, "ArrayList", "E")
	arrayList.Interfaces = []*ClassType{NewClassType(list, arrayList.TypeParams[0])}

	mapClass := declare(javaUtil, "Map", "K", "V")
	mapClass.Interface = true
	k, v := mapClass.TypeParams[0], mapClass.TypeParams[1]
	method(mapClass, "get", v, ObjectType())
	method(mapClass, "put", v, k, v)
	method(mapClass, "containsKey", Boolean, ObjectType())
	method(mapClass, "size", Int)

	hashMap := declare(javaUtil, "HashMap", "K", "V")
	hashMap.Interfaces = []*ClassType{NewClassType(mapClass, hashMap.TypeParams[0], hashMap.TypeParams[1])}
}
