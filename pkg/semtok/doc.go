package semtok

/*
Implementation Details & Notes:
-----------------------------

Lexer Token -> Semantic Token Mapping:

    Lexer Token             ->   Semantic Token
    -----------                  --------------
    tag-open / tag-close    ->    type
    attribute-name          ->    property
    attribute-value, quote  ->    string
    comment                 ->    comment
    doctype, block-name     ->    keyword
    entity-ref, delimiter   ->    macro
    block-parameters        ->    expression highlighter
    embedded-content        ->    dialect highlighter (highlight.Registry)

Embedded content is highlighted per run, not per lexer token: the lexer hands
out script bodies a line at a time, and a highlighter that only sees one line
cannot know it is inside a template literal.

Position Handling:
-----------------
Tokens are split at line breaks and never include them. Encode reports
columns as position.Index counts them (grapheme clusters).

    Offset          ->    LSP Position
    ------                -------------
    byte offset           Line:Character
*/
