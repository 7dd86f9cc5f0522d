package mwdump

import "strconv"

// Namespace is the numeric kind of a page (article, talk, user, ...).
//
// The well-known codes are named below. Any other code is a custom
// namespace defined by the wiki and keeps its number.
type Namespace int

// Well-known namespaces.
const (
	Media                Namespace = -2
	Special              Namespace = -1
	Main                 Namespace = 0
	Talk                 Namespace = 1
	User                 Namespace = 2
	UserTalk             Namespace = 3
	Project              Namespace = 4
	ProjectTalk          Namespace = 5
	File                 Namespace = 6
	FileTalk             Namespace = 7
	MediaWiki            Namespace = 8
	MediaWikiTalk        Namespace = 9
	Template             Namespace = 10
	TemplateTalk         Namespace = 11
	Help                 Namespace = 12
	HelpTalk             Namespace = 13
	Category             Namespace = 14
	CategoryTalk         Namespace = 15
	Portal               Namespace = 100
	PortalTalk           Namespace = 101
	Draft                Namespace = 118
	DraftTalk            Namespace = 119
	TimedText            Namespace = 710
	TimedTextTalk        Namespace = 711
	Module               Namespace = 828
	ModuleTalk           Namespace = 829
	Gadget               Namespace = 2300
	GadgetTalk           Namespace = 2301
	GadgetDefinition     Namespace = 2302
	GadgetDefinitionTalk Namespace = 2303
)

var namespaceNames = map[Namespace]string{
	Media:                "Media",
	Special:              "Special",
	Main:                 "Main",
	Talk:                 "Talk",
	User:                 "User",
	UserTalk:             "UserTalk",
	Project:              "Project",
	ProjectTalk:          "ProjectTalk",
	File:                 "File",
	FileTalk:             "FileTalk",
	MediaWiki:            "MediaWiki",
	MediaWikiTalk:        "MediaWikiTalk",
	Template:             "Template",
	TemplateTalk:         "TemplateTalk",
	Help:                 "Help",
	HelpTalk:             "HelpTalk",
	Category:             "Category",
	CategoryTalk:         "CategoryTalk",
	Portal:               "Portal",
	PortalTalk:           "PortalTalk",
	Draft:                "Draft",
	DraftTalk:            "DraftTalk",
	TimedText:            "TimedText",
	TimedTextTalk:        "TimedTextTalk",
	Module:               "Module",
	ModuleTalk:           "ModuleTalk",
	Gadget:               "Gadget",
	GadgetTalk:           "GadgetTalk",
	GadgetDefinition:     "GadgetDefinition",
	GadgetDefinitionTalk: "GadgetDefinitionTalk",
}

// NamespaceFromCode maps a dump <ns> code to its Namespace.
func NamespaceFromCode(code int) Namespace {
	return Namespace(code)
}

// Code returns the numeric code as found in the dump.
func (n Namespace) Code() int { return int(n) }

// Custom reports whether n is not one of the well-known namespaces.
func (n Namespace) Custom() bool {
	_, ok := namespaceNames[n]
	return !ok
}

// IsTalk reports whether n is a discussion namespace. MediaWiki gives
// every talk namespace an odd code.
func (n Namespace) IsTalk() bool {
	return n >= 0 && n%2 == 1
}

func (n Namespace) String() string {
	if s, ok := namespaceNames[n]; ok {
		return s
	}
	return "Custom(" + strconv.Itoa(int(n)) + ")"
}
